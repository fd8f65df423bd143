// internal/matching/ranker.go
package matching

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"homematch-workers/internal/models"
)

const (
	DefaultMaxResults = 10
	scoreTolerance    = 1e-9
)

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithMaxResults caps the ranked list. n <= 0 keeps every listing.
func WithMaxResults(n int) RankerOption {
	return func(r *Ranker) { r.maxResults = n }
}

func WithParallelism(n int) RankerOption {
	return func(r *Ranker) { r.parallelism = n }
}

func WithMaxPossible(max float64) RankerOption {
	return func(r *Ranker) {
		if max > 0 {
			r.maxPossible = max
		}
	}
}

// WithJitter breaks exact (score, fee) ties randomly instead of by name.
// Reported scores are never changed. A nil source disables it.
func WithJitter(src *rand.Rand) RankerOption {
	return func(r *Ranker) { r.jitter = src }
}

type Ranker struct {
	scorer      *Scorer
	maxResults  int
	parallelism int
	maxPossible float64

	jitterMu sync.Mutex
	jitter   *rand.Rand
}

func NewRanker(scorer *Scorer, opts ...RankerOption) *Ranker {
	r := &Ranker{
		scorer:      scorer,
		maxResults:  DefaultMaxResults,
		parallelism: 4,
		maxPossible: MaxPossible,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Ranker) Scorer() *Scorer { return r.scorer }

func (r *Ranker) MaxResults() int { return r.maxResults }

func (r *Ranker) MaxPossible() float64 { return r.maxPossible }

// ScoreAll scores every listing in dataset order. Scoring is fanned out
// over a bounded errgroup; each listing is independent.
func (r *Ranker) ScoreAll(ctx context.Context, listings []models.Listing, prefs models.PreferenceSet) ([]models.ScoredListing, error) {
	out := make([]models.ScoredListing, len(listings))

	g, gctx := errgroup.WithContext(ctx)
	if r.parallelism > 0 {
		g.SetLimit(r.parallelism)
	}
	for i := range listings {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := r.scorer.Evaluate(listings[i], prefs)
			out[i] = models.ScoredListing{
				Listing:     listings[i],
				Score:       res.Score,
				Explanation: res.Explanation,
				Factors:     res.Factors,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Rank scores, sorts by (score desc, fee asc) and keeps the configured
// number of top results. Each kept listing gets its 1-based rank and
// match percentage.
func (r *Ranker) Rank(ctx context.Context, listings []models.Listing, prefs models.PreferenceSet) ([]models.ScoredListing, error) {
	return r.RankTop(ctx, listings, prefs, r.maxResults)
}

// RankTop is Rank with an explicit limit. limit <= 0 keeps every listing.
func (r *Ranker) RankTop(ctx context.Context, listings []models.Listing, prefs models.PreferenceSet, limit int) ([]models.ScoredListing, error) {
	scored, err := r.ScoreAll(ctx, listings, prefs)
	if err != nil {
		return nil, err
	}

	r.sort(scored)

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	for i := range scored {
		pct := MatchPercent(scored[i].Score, r.maxPossible)
		scored[i].Rank = i + 1
		scored[i].MatchPercent = &pct
	}
	return scored, nil
}

func (r *Ranker) sort(scored []models.ScoredListing) {
	keys := r.tieKeys(len(scored))
	idx := make([]int, len(scored))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(a, b int) bool {
		x, y := scored[idx[a]], scored[idx[b]]
		if math.Abs(x.Score-y.Score) > scoreTolerance {
			return x.Score > y.Score
		}
		if x.Listing.WeeklyFee != y.Listing.WeeklyFee {
			return x.Listing.WeeklyFee < y.Listing.WeeklyFee
		}
		if keys != nil {
			return keys[idx[a]] < keys[idx[b]]
		}
		return x.Listing.Name < y.Listing.Name
	})

	sorted := make([]models.ScoredListing, len(scored))
	for i, j := range idx {
		sorted[i] = scored[j]
	}
	copy(scored, sorted)
}

func (r *Ranker) tieKeys(n int) []float64 {
	if r.jitter == nil {
		return nil
	}
	r.jitterMu.Lock()
	defer r.jitterMu.Unlock()

	keys := make([]float64, n)
	for i := range keys {
		keys[i] = r.jitter.Float64()
	}
	return keys
}

// MatchPercent maps a score onto [0, 100] against maxPossible.
func MatchPercent(score, maxPossible float64) int {
	if !finite(score) || maxPossible <= 0 {
		return 0
	}
	pct := math.Floor(score / maxPossible * 100)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return int(pct)
	}
}
