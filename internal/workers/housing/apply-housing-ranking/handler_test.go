// internal/workers/housing/apply-housing-ranking/handler_test.go
package applyhousingranking

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

func testListings() []models.Listing {
	return []models.Listing{
		{Name: "Raffles Hall", WeeklyFee: 210, PrimaryFaculty: "FASS(Arts)", Vibes: []string{"Sports"}},
		{Name: "Cinnamon College", WeeklyFee: 320, PrimaryFaculty: "SoC(Computing)", Vibes: []string{"Academic"}},
		{Name: "PGP House", WeeklyFee: 165, PrimaryFaculty: "CDE (Engineering)", SecondaryFaculty: "SoC(Computing)"},
		{Name: "Sheares Hall", WeeklyFee: 190, PrimaryFaculty: "SDE (Design)"},
		{Name: "UTown Residence", WeeklyFee: 180, PrimaryFaculty: "SoC(Computing)", Vibes: []string{"Social"}},
	}
}

func createTestHandler(t *testing.T, store *dataset.Store) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	rec := matching.NewRecommender(
		matching.NewRanker(matching.NewScorer(nil)),
		matching.WithQueryIDs(func() string { return "query-1" }),
	)
	return NewHandler(LoadConfig(), store, rec, validation.NewValidator(reg), nil, logger.NewTestLogger(t))
}

func rankedNames(out *Output) []string {
	names := make([]string, len(out.RankedListings))
	for i, s := range out.RankedListings {
		names[i] = s.Listing.Name
	}
	return names
}

func TestHandler_Execute_RankedMode(t *testing.T) {
	h := createTestHandler(t, dataset.NewStaticStore(testListings()))

	out, err := h.Execute(context.Background(), &Input{
		Preferences: map[string]interface{}{"faculty": "SoC(Computing)"},
	})
	require.NoError(t, err)

	assert.Equal(t, "query-1", out.QueryID)
	assert.Equal(t, matching.TitleRecommended, out.Title)
	assert.True(t, out.FiltersActive)
	assert.Empty(t, out.BudgetTip)
	assert.Equal(t, []string{"UTown Residence", "Cinnamon College", "PGP House", "Sheares Hall", "Raffles Hall"}, rankedNames(out))
	require.NotNil(t, out.RankedListings[0].MatchPercent)
	assert.Equal(t, 53, *out.RankedListings[0].MatchPercent)
}

func TestHandler_Execute_MaxResultsOverride(t *testing.T) {
	h := createTestHandler(t, dataset.NewStaticStore(testListings()))

	out, err := h.Execute(context.Background(), &Input{
		Preferences: map[string]interface{}{"faculty": "SoC(Computing)", "budget": 150.0},
		MaxResults:  2,
	})
	require.NoError(t, err)

	assert.Len(t, out.RankedListings, 2)
	assert.Equal(t, matching.BudgetTip, out.BudgetTip)
}

func TestHandler_Execute_BrowseMode(t *testing.T) {
	h := createTestHandler(t, dataset.NewStaticStore(testListings()))

	out, err := h.Execute(context.Background(), &Input{Preferences: map[string]interface{}{}})
	require.NoError(t, err)

	assert.Equal(t, matching.TitleAll, out.Title)
	assert.False(t, out.FiltersActive)
	assert.Len(t, out.RankedListings, 5)
	assert.Equal(t, "Raffles Hall", out.RankedListings[0].Listing.Name)
	assert.Nil(t, out.RankedListings[0].MatchPercent)
	assert.Equal(t, 1, out.RankedListings[0].Rank)
	assert.Equal(t, 5, out.RankedListings[4].Rank)
}

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		h := createTestHandler(t, dataset.NewStore())
		_, err := h.Execute(context.Background(), &Input{Preferences: map[string]interface{}{}})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatasetEmpty))
	})

	t.Run("invalid preferences", func(t *testing.T) {
		h := createTestHandler(t, dataset.NewStaticStore(testListings()))
		_, err := h.Execute(context.Background(), &Input{Preferences: map[string]interface{}{"vibes": []interface{}{"Rowdy"}}})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPreferences))
	})

	t.Run("cancelled context", func(t *testing.T) {
		h := createTestHandler(t, dataset.NewStaticStore(testListings()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := h.Execute(ctx, &Input{Preferences: map[string]interface{}{"needsMeals": true}})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeRankingFailed))
	})
}

func TestHandler_Decode_RejectsOutOfRangeMaxResults(t *testing.T) {
	h := createTestHandler(t, dataset.NewStaticStore(testListings()))

	j := entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 3, Type: TaskType, Variables: `{"preferences":{},"maxResults":500}`}}
	_, err := h.decode(j)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidPreferences))
}
