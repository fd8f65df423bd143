// internal/dataset/cache_test.go
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homematch-workers/internal/models"
)

func TestSnapshotCache_Miss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("housing:dataset:csv:housing_data.csv").RedisNil()

	cache := NewSnapshotCache(client, time.Hour)
	listings, ok, err := cache.Get(context.Background(), "csv:housing_data.csv")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, listings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotCache_SetWithTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	listings := []models.Listing{{Name: "Acacia", WeeklyFee: 230, Vibes: []string{"Quiet"}}}
	data, err := json.Marshal(listings)
	require.NoError(t, err)

	mock.ExpectSet("housing:dataset:postgres:housing_listings", data, 30*time.Minute).SetVal("OK")

	cache := NewSnapshotCache(client, 30*time.Minute)
	require.NoError(t, cache.Set(context.Background(), "postgres:housing_listings", listings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotCache_GetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet("housing:dataset:x").SetErr(errors.New("i/o timeout"))

	_, ok, err := NewSnapshotCache(client, time.Hour).Get(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestSnapshotCache_RoundTripMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewSnapshotCache(client, 10*time.Minute)
	ctx := context.Background()
	in := []models.Listing{
		{Name: "Eusoff Hall", WeeklyFee: 210, AirCon: true, Vibes: []string{"Sports", "Social", "Leadership"}},
	}

	require.NoError(t, cache.Set(ctx, "csv:a.csv", in))
	assert.Equal(t, 10*time.Minute, mr.TTL(CacheKey("csv:a.csv")))

	out, ok, err := cache.Get(ctx, "csv:a.csv")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in[0].Name, out[0].Name)
	assert.Equal(t, in[0].Vibes, out[0].Vibes)

	require.NoError(t, cache.Invalidate(ctx, "csv:a.csv"))
	_, ok, err = cache.Get(ctx, "csv:a.csv")
	require.NoError(t, err)
	assert.False(t, ok)
}
