// internal/dataset/loader_test.go
package dataset

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "homematch-workers/internal/common/errors"
	"homematch-workers/internal/common/logger"
)

type stubSource struct {
	id      string
	records []Record
	err     error
	calls   int
}

func (s *stubSource) ID() string { return s.id }

func (s *stubSource) Fetch(ctx context.Context) ([]Record, error) {
	s.calls++
	return s.records, s.err
}

func TestLoader_NormalizesAndBackfills(t *testing.T) {
	src := &stubSource{id: "stub", records: []Record{
		{ColName: "Acacia", ColFeeWeekly: "S$ 240", ColVibes: "Quiet"},
		{ColName: "Pioneer", ColFeeWeekly: "n/a"},
		{ColName: "  "},
	}}

	loader := NewLoader(src, logger.NewTestLogger(t), WithRand(rand.New(rand.NewSource(1))), WithDefaultFee(170))
	listings, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, 240.0, listings[0].WeeklyFee)
	assert.Equal(t, []string{"Quiet"}, listings[0].Vibes)
	assert.Equal(t, 170.0, listings[1].WeeklyFee)
	assert.GreaterOrEqual(t, len(listings[1].Vibes), 3)
}

func TestLoader_Errors(t *testing.T) {
	t.Run("fetch failure is retryable", func(t *testing.T) {
		src := &stubSource{id: "stub", err: errors.New("dial tcp: refused")}
		_, err := NewLoader(src, logger.NewNoOpLogger()).Load(context.Background())

		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatasetLoadFailed))
		assert.True(t, apperrors.AsStandard(err).Retryable)
	})

	t.Run("empty dataset", func(t *testing.T) {
		src := &stubSource{id: "stub"}
		_, err := NewLoader(src, logger.NewNoOpLogger()).Load(context.Background())
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatasetEmpty))
	})
}

func TestLoader_SharesBackfillThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewSnapshotCache(client, time.Hour)

	src := &stubSource{id: "stub", records: []Record{{ColName: "No Tags"}}}

	first, err := NewLoader(src, logger.NewNoOpLogger(), WithCache(cache), WithRand(rand.New(rand.NewSource(1)))).
		Load(context.Background())
	require.NoError(t, err)

	second, err := NewLoader(src, logger.NewNoOpLogger(), WithCache(cache), WithRand(rand.New(rand.NewSource(99)))).
		Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, first[0].Vibes, second[0].Vibes)
}

func TestLoader_CacheDownFallsBackToSource(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	src := &stubSource{id: "stub", records: []Record{{ColName: "Only", ColVibes: "Social"}}}
	listings, err := NewLoader(src, logger.NewZapAdapter(zap.New(core)), WithCache(NewSnapshotCache(client, time.Hour))).
		Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, listings, 1)

	warned := logs.FilterMessage("snapshot cache read failed, loading from source").All()
	require.Len(t, warned, 1)
	assert.Contains(t, warned[0].ContextMap()["error"], string(apperrors.ErrCodeCacheUnavailable))
}
