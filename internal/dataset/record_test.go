// internal/dataset/record_test.go
package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFee(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"180", 180},
		{"S$1,250 / week", 1250},
		{"$180 - $220", 180},
		{"approx. 205.50", 205},
		{"TBC", 165},
		{"", 165},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseFee(tt.text, DefaultWeeklyFee))
		})
	}
	assert.Equal(t, 99.0, ParseFee("n/a", 99))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Single", "Double"}, SplitList(" Single, Double ,"))
	assert.Empty(t, SplitList(""))
	assert.Empty(t, SplitList(" , "))
}

func TestNormalize(t *testing.T) {
	rec := Record{
		ColName:             " Eusoff Hall ",
		ColType:             "Hall",
		ColFeeWeekly:        "S$ 215",
		ColPrimaryFaculty:   "FoS(Science)",
		ColSecondaryFaculty: "Medicine",
		ColAirCon:           "Air-Con (selected rooms)",
		ColMealPlan:         "YES - breakfast & dinner",
		ColModules:          "No",
		ColRoomTypes:        "Single, Double",
		ColVibes:            "Sports, Performing Arts",
		ColImageURL:         "https://example.org/eusoff.jpg",
	}

	l := Normalize(rec, DefaultWeeklyFee)

	assert.Equal(t, "Eusoff Hall", l.Name)
	assert.Equal(t, "S$ 215", l.FeeText)
	assert.Equal(t, 215.0, l.WeeklyFee)
	assert.Equal(t, "FoS(Science)", l.PrimaryFaculty)
	assert.True(t, l.AirCon)
	assert.True(t, l.MealPlan)
	assert.False(t, l.Modules)
	assert.Equal(t, []string{"Single", "Double"}, l.RoomTypes)
	assert.Equal(t, []string{"Sports", "Performing Arts"}, l.Vibes)
	assert.Empty(t, l.VirtualTourURL)
}

func TestNormalize_MissingColumns(t *testing.T) {
	l := Normalize(Record{ColName: "Bare"}, DefaultWeeklyFee)
	assert.Equal(t, 165.0, l.WeeklyFee)
	assert.False(t, l.AirCon)
	assert.Empty(t, l.Vibes)
	assert.Empty(t, l.PrimaryFaculty)
}
