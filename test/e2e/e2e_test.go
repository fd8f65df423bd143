// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "homematch-workers/internal/common/http"
	"homematch-workers/internal/common/logger"
	"homematch-workers/internal/common/validation"
	"homematch-workers/internal/dataset"
	"homematch-workers/internal/matching"
	"homematch-workers/internal/models"
	"homematch-workers/pkg/registry"

	ahr "homematch-workers/internal/workers/housing/apply-housing-ranking"
	chs "homematch-workers/internal/workers/housing/calculate-housing-score"
	php "homematch-workers/internal/workers/housing/parse-housing-preferences"
)

const dataPath = "testdata/housing_data.csv"

type pipeline struct {
	store  *dataset.Store
	parse  *php.Handler
	score  *chs.Handler
	rank   *ahr.Handler
	server *apihttp.Server
}

func newPipeline(t *testing.T, cache *dataset.SnapshotCache, seed int64) *pipeline {
	t.Helper()
	log := logger.NewTestLogger(t)

	opts := []dataset.LoaderOption{dataset.WithRand(rand.New(rand.NewSource(seed)))}
	if cache != nil {
		opts = append(opts, dataset.WithCache(cache))
	}
	store := dataset.NewStore()
	require.NoError(t, store.Load(context.Background(), dataset.NewLoader(dataset.NewCSVSource(dataPath, "latin1"), log, opts...)))

	reg, err := registry.Default()
	require.NoError(t, err)
	validator := validation.NewValidator(reg)

	scorer := matching.NewScorer(nil)
	recommender := matching.NewRecommender(matching.NewRanker(scorer))

	return &pipeline{
		store:  store,
		parse:  php.NewHandler(php.LoadConfig(), validator, nil, log),
		score:  chs.NewHandler(chs.LoadConfig(), store, scorer, validator, nil, log),
		rank:   ahr.NewHandler(ahr.LoadConfig(), store, recommender, validator, nil, log),
		server: apihttp.NewServer(store, recommender, validator, log),
	}
}

func TestDatasetLoad(t *testing.T) {
	p := newPipeline(t, nil, 1)

	require.Equal(t, 5, p.store.Len())

	tembusu, ok := p.store.Find("tembusu college")
	require.True(t, ok)
	assert.Equal(t, "Résidence College", tembusu.Type)
	assert.Equal(t, 250.0, tembusu.WeeklyFee)
	assert.True(t, tembusu.AirCon)
	assert.True(t, tembusu.MealPlan)
	assert.Equal(t, []string{"Academic", "Social"}, tembusu.Vibes)

	kentRidge, ok := p.store.Find("Kent Ridge Hall")
	require.True(t, ok)
	assert.Equal(t, float64(dataset.DefaultWeeklyFee), kentRidge.WeeklyFee)

	utown, ok := p.store.Find("UTown Residence")
	require.True(t, ok)
	assert.Equal(t, 180.0, utown.WeeklyFee)
	assert.GreaterOrEqual(t, len(utown.Vibes), 3)
	assert.LessOrEqual(t, len(utown.Vibes), 6)
}

func TestRecommendationWorkflow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := newPipeline(t, nil, 1)

	parsed, err := p.parse.Execute(ctx, &php.Input{RawPreferences: map[string]interface{}{
		"faculty":     "SoC(Computing)",
		"needsAirCon": true,
		"budget":      "200",
	}})
	require.NoError(t, err)
	require.True(t, parsed.FiltersActive)

	// The parsed preferences travel through process variables as JSON.
	var prefs map[string]interface{}
	raw, err := json.Marshal(parsed.Preferences)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &prefs))

	ranked, err := p.rank.Execute(ctx, &ahr.Input{Preferences: prefs})
	require.NoError(t, err)

	assert.Equal(t, matching.TitleRecommended, ranked.Title)
	assert.Empty(t, ranked.BudgetTip)
	assert.NotEmpty(t, ranked.QueryID)

	names := make([]string, len(ranked.RankedListings))
	for i, s := range ranked.RankedListings {
		names[i] = s.Listing.Name
	}
	assert.Equal(t, []string{"UTown Residence", "Tembusu College", "PGP House", "Kent Ridge Hall", "Eusoff Hall"}, names)

	top := ranked.RankedListings[0]
	assert.Equal(t, 48.0, top.Score)
	assert.Equal(t, 1, top.Rank)
	require.NotNil(t, top.MatchPercent)
	assert.Equal(t, 64, *top.MatchPercent)
	assert.Equal(t, "Base Experience (+10) • Prime Location (+20) • Within Budget (+10) • Air-Con (+8)", top.Explanation)

	scored, err := p.score.Execute(ctx, &chs.Input{ListingName: "Eusoff Hall", Preferences: prefs})
	require.NoError(t, err)
	assert.Equal(t, ranked.RankedListings[4].Score, scored.Score)
	assert.Equal(t, "Base Experience (+10) • Price Fit (+9.52)", scored.Explanation)
}

func TestBrowseWorkflow(t *testing.T) {
	p := newPipeline(t, nil, 1)

	parsed, err := p.parse.Execute(context.Background(), &php.Input{RawPreferences: map[string]interface{}{}})
	require.NoError(t, err)
	assert.False(t, parsed.FiltersActive)

	ranked, err := p.rank.Execute(context.Background(), &ahr.Input{Preferences: map[string]interface{}{}})
	require.NoError(t, err)
	assert.Equal(t, matching.TitleAll, ranked.Title)
	require.Len(t, ranked.RankedListings, 5)
	assert.Equal(t, "Eusoff Hall", ranked.RankedListings[0].Listing.Name)
	for _, s := range ranked.RankedListings {
		assert.Nil(t, s.MatchPercent)
	}
}

func TestReplicasShareBackfillThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := dataset.NewSnapshotCache(rdb, time.Hour)

	first := newPipeline(t, cache, 1)
	second := newPipeline(t, cache, 99)

	a, _ := first.store.Find("UTown Residence")
	b, _ := second.store.Find("UTown Residence")
	assert.Equal(t, a.Vibes, b.Vibes)
}

func TestHTTPRecommendations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := newPipeline(t, nil, 1)

	body, err := json.Marshal(map[string]interface{}{"vibes": "Sports", "budget": 150})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	p.server.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var rec models.Recommendation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, matching.BudgetTip, rec.BudgetTip)
	require.NotEmpty(t, rec.Listings)
	assert.Contains(t, rec.Listings[0].Explanation, "Vibe Match (+5)")
}
