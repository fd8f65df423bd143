// internal/workers/housing/calculate-housing-score/handler_test.go
package calculatehousingscore

import (
	"context"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "homematch-workers/internal/common/errors"
	"homematch-workers/internal/common/logger"
	"homematch-workers/internal/common/validation"
	"homematch-workers/internal/dataset"
	"homematch-workers/internal/matching"
	"homematch-workers/internal/models"
	"homematch-workers/pkg/registry"
)

func createTestHandler(t *testing.T) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	store := dataset.NewStaticStore([]models.Listing{
		{Name: "Eusoff Hall", WeeklyFee: 165, PrimaryFaculty: "SoC(Computing)", SecondaryFaculty: "Law", Vibes: []string{"Sports"}},
		{Name: "Pioneer House", WeeklyFee: 400, PrimaryFaculty: "Business"},
	})
	return NewHandler(LoadConfig(), store, matching.NewScorer(nil), validation.NewValidator(reg), nil, logger.NewTestLogger(t))
}

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name             string
		input            *Input
		expectedScore    float64
		expectedPercent  int
		expectedFragment string
	}{
		{
			name:             "listing by name in faculty",
			input:            &Input{ListingName: "eusoff hall", Preferences: map[string]interface{}{"faculty": "SoC(Computing)"}},
			expectedScore:    40,
			expectedPercent:  53,
			expectedFragment: "Prime Location (+20)",
		},
		{
			name:             "over budget listing",
			input:            &Input{ListingName: "Pioneer House", Preferences: map[string]interface{}{}},
			expectedScore:    17.5,
			expectedPercent:  23,
			expectedFragment: "Price Fit (+7.5)",
		},
		{
			name: "inline listing",
			input: &Input{
				Listing:     &models.Listing{Name: "Off-campus Studio", WeeklyFee: 280, AirCon: true},
				Preferences: map[string]interface{}{"needsAirCon": true, "budget": 300.0},
			},
			expectedScore:    28,
			expectedPercent:  37,
			expectedFragment: "Air-Con (+8)",
		},
	}

	h := createTestHandler(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedScore, out.Score)
			assert.Equal(t, tt.expectedPercent, out.MatchPercent)
			assert.Contains(t, out.Explanation, tt.expectedFragment)
			assert.NotEmpty(t, out.Factors)
		})
	}
}

func TestHandler_Execute_Errors(t *testing.T) {
	h := createTestHandler(t)

	_, err := h.Execute(context.Background(), &Input{ListingName: "Nowhere Hall"})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeListingNotFound))

	_, err = h.Execute(context.Background(), &Input{ListingName: "Eusoff Hall", Preferences: map[string]interface{}{"budget": -1.0}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPreferences))
}

func TestHandler_Decode_RequiresListing(t *testing.T) {
	h := createTestHandler(t)

	j := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Type: TaskType, Variables: `{"preferences":{}}`}}
	_, err := h.decode(j)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPreferences))

	j.Variables = `{"preferences":{},"listingName":"Eusoff Hall"}`
	input, err := h.decode(j)
	require.NoError(t, err)
	assert.Equal(t, "Eusoff Hall", input.ListingName)
}
