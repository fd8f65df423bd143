// internal/dataset/loader.go
package dataset

import (
	"context"
	"math/rand"
	"time"

	apperrors "homematch-workers/internal/common/errors"
	"homematch-workers/internal/common/logger"
	"homematch-workers/internal/models"
)

type LoaderOption func(*Loader)

func WithCache(cache *SnapshotCache) LoaderOption {
	return func(l *Loader) { l.cache = cache }
}

// WithRand pins the backfill random source.
func WithRand(rng *rand.Rand) LoaderOption {
	return func(l *Loader) { l.rng = rng }
}

func WithDefaultFee(fee int) LoaderOption {
	return func(l *Loader) { l.defaultFee = fee }
}

// Loader fetches raw records from a source and normalizes them into
// listings, backfilling missing vibe tags once per load.
type Loader struct {
	source     Source
	cache      *SnapshotCache
	rng        *rand.Rand
	defaultFee int
	logger     logger.Logger
}

func NewLoader(source Source, log logger.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:     source,
		defaultFee: DefaultWeeklyFee,
		logger:     log.WithFields(map[string]interface{}{"source": source.ID()}),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.rng == nil {
		l.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return l
}

func (l *Loader) SourceID() string {
	return l.source.ID()
}

func (l *Loader) Load(ctx context.Context) ([]models.Listing, error) {
	start := time.Now()

	if l.cache != nil {
		listings, ok, err := l.cache.Get(ctx, l.source.ID())
		switch {
		case err != nil:
			l.logger.WithError(apperrors.NewCacheUnavailableError(err)).
				Warn("snapshot cache read failed, loading from source", nil)
		case ok && len(listings) > 0:
			l.logger.Info("dataset loaded from snapshot cache", map[string]interface{}{
				"listings": len(listings),
			})
			return listings, nil
		}
	}

	records, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, apperrors.NewDatasetLoadFailedError(l.source.ID(), err)
	}

	listings := make([]models.Listing, 0, len(records))
	for _, rec := range records {
		if blank(rec) {
			continue
		}
		listings = append(listings, Normalize(rec, l.defaultFee))
	}
	if len(listings) == 0 {
		return nil, apperrors.NewDatasetEmptyError(l.source.ID())
	}

	filled := Backfill(listings, l.rng)

	if l.cache != nil {
		if err := l.cache.Set(ctx, l.source.ID(), listings); err != nil {
			l.logger.WithError(err).Warn("snapshot cache write failed", nil)
		}
	}

	l.logger.Info("dataset loaded", map[string]interface{}{
		"listings":    len(listings),
		"backfilled":  filled,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return listings, nil
}
