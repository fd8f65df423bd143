// internal/matching/recommender.go
package matching

import (
	"context"

	"github.com/google/uuid"

	"homematch-workers/internal/models"
)

const (
	TitleRecommended = "Recommended NUS Accommodations"
	TitleAll         = "All NUS Accommodations"

	BudgetTip = "Most NUS hostels start at ~$165. We've highlighted the most affordable options matching your vibes."

	DefaultBudgetCeiling      = 300.0
	DefaultBudgetTipThreshold = 160.0
)

type RecommenderOption func(*Recommender)

func WithBudgetCeiling(v float64) RecommenderOption {
	return func(r *Recommender) { r.budgetCeiling = v }
}

func WithBudgetTipThreshold(v float64) RecommenderOption {
	return func(r *Recommender) { r.tipThreshold = v }
}

// WithQueryIDs replaces the uuid generator, mostly for tests.
func WithQueryIDs(fn func() string) RecommenderOption {
	return func(r *Recommender) { r.newID = fn }
}

// Recommender decides how a query is presented: a ranked shortlist when
// any filter is set, otherwise the whole dataset in load order.
type Recommender struct {
	ranker        *Ranker
	budgetCeiling float64
	tipThreshold  float64
	newID         func() string
}

func NewRecommender(ranker *Ranker, opts ...RecommenderOption) *Recommender {
	r := &Recommender{
		ranker:        ranker,
		budgetCeiling: DefaultBudgetCeiling,
		tipThreshold:  DefaultBudgetTipThreshold,
		newID:         func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Recommender) Ranker() *Ranker { return r.ranker }

// FiltersActive reports whether prefs differ from the reset state in any
// way that should switch the page to ranked mode.
func (r *Recommender) FiltersActive(prefs models.PreferenceSet) bool {
	return FiltersActive(prefs, r.budgetCeiling)
}

func FiltersActive(prefs models.PreferenceSet, budgetCeiling float64) bool {
	room := prefs.RoomPreference
	return prefs.FacultySelected() ||
		len(prefs.Vibes) > 0 ||
		prefs.Budget < budgetCeiling ||
		prefs.NeedsAirCon || prefs.NeedsMeals || prefs.WantsModules ||
		(room != "" && room != models.RoomAny)
}

func (r *Recommender) Recommend(ctx context.Context, listings []models.Listing, prefs models.PreferenceSet) (models.Recommendation, error) {
	return r.RecommendTop(ctx, listings, prefs, r.ranker.MaxResults())
}

// RecommendTop is Recommend with an explicit shortlist size for ranked mode.
func (r *Recommender) RecommendTop(ctx context.Context, listings []models.Listing, prefs models.PreferenceSet, limit int) (models.Recommendation, error) {
	rec := models.Recommendation{
		QueryID:       r.newID(),
		FiltersActive: r.FiltersActive(prefs),
	}
	if prefs.Budget < r.tipThreshold {
		rec.BudgetTip = BudgetTip
	}

	if !rec.FiltersActive {
		scored, err := r.ranker.ScoreAll(ctx, listings, prefs)
		if err != nil {
			return models.Recommendation{}, err
		}
		for i := range scored {
			scored[i].Rank = i + 1
		}
		rec.Title = TitleAll
		rec.Listings = scored
		return rec, nil
	}

	ranked, err := r.ranker.RankTop(ctx, listings, prefs, limit)
	if err != nil {
		return models.Recommendation{}, err
	}
	rec.Title = TitleRecommended
	rec.Listings = ranked
	return rec, nil
}
