// internal/dataset/record.go
package dataset

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"homematch-workers/internal/models"
)

// Canonical column names of the housing sheet.
const (
	ColName             = "Name"
	ColType             = "Type"
	ColFeeWeekly        = "Fee_Weekly"
	ColPrimaryFaculty   = "1st Nearest Faculty"
	ColSecondaryFaculty = "2nd Nearest Faculty"
	ColAirCon           = "AirCon"
	ColMealPlan         = "MealPlan"
	ColModules          = "Modules"
	ColRoomTypes        = "Room_Types"
	ColVibes            = "Vibes"
	ColImageURL         = "Image URL"
	ColVirtualTour      = "Virtual_Tour"
)

// DefaultWeeklyFee is used when no number can be read from the fee text.
const DefaultWeeklyFee = 165

// Record is one raw row keyed by canonical column name. Missing columns
// read as "".
type Record map[string]string

// Source yields raw records from one backing store.
type Source interface {
	// ID identifies the source in cache keys and logs.
	ID() string
	Fetch(ctx context.Context) ([]Record, error)
}

var digitsRegexp = regexp.MustCompile(`\d+`)

// ParseFee strips thousands separators and reads the first run of digits:
// "S$1,250 / week" -> 1250, "$180-$220" -> 180, "TBC" -> def.
func ParseFee(text string, def int) float64 {
	cleaned := strings.ReplaceAll(text, ",", "")
	match := digitsRegexp.FindString(cleaned)
	if match == "" {
		return float64(def)
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return float64(def)
	}
	return float64(n)
}

// SplitList splits a comma separated cell, dropping empty entries.
func SplitList(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(text, sub string) bool {
	return strings.Contains(strings.ToLower(text), sub)
}

// Normalize turns a raw record into a Listing. It never fails; anything it
// cannot read becomes a zero value or the default fee.
func Normalize(rec Record, defaultFee int) models.Listing {
	get := func(col string) string { return strings.TrimSpace(rec[col]) }

	return models.Listing{
		Name:             get(ColName),
		Type:             get(ColType),
		FeeText:          get(ColFeeWeekly),
		WeeklyFee:        ParseFee(get(ColFeeWeekly), defaultFee),
		PrimaryFaculty:   get(ColPrimaryFaculty),
		SecondaryFaculty: get(ColSecondaryFaculty),
		AirCon:           containsFold(get(ColAirCon), "air-con"),
		MealPlan:         containsFold(get(ColMealPlan), "yes"),
		Modules:          containsFold(get(ColModules), "yes"),
		RoomTypes:        SplitList(get(ColRoomTypes)),
		Vibes:            SplitList(get(ColVibes)),
		ImageURL:         get(ColImageURL),
		VirtualTourURL:   get(ColVirtualTour),
	}
}

func blank(rec Record) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
