// internal/dataset/cache.go
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"homematch-workers/internal/models"
)

const cacheKeyPrefix = "housing:dataset:"

// SnapshotCache stores the normalized, backfilled dataset in Redis so
// every replica serves the same vibe tags.
type SnapshotCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewSnapshotCache(client redis.Cmdable, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

func CacheKey(sourceID string) string {
	return cacheKeyPrefix + sourceID
}

// Get returns the cached listings. ok is false on a miss.
func (c *SnapshotCache) Get(ctx context.Context, sourceID string) ([]models.Listing, bool, error) {
	val, err := c.client.Get(ctx, CacheKey(sourceID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get snapshot: %w", err)
	}

	var listings []models.Listing
	if err := json.Unmarshal([]byte(val), &listings); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return listings, true, nil
}

func (c *SnapshotCache) Set(ctx context.Context, sourceID string, listings []models.Listing) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, CacheKey(sourceID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

func (c *SnapshotCache) Invalidate(ctx context.Context, sourceID string) error {
	return c.client.Del(ctx, CacheKey(sourceID)).Err()
}
