package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GTDGit/procure_api/internal/quote"
)

// ComparisonCache keeps the last good comparison per material request so it
// can be served, marked stale, when quotes cannot be loaded.
type ComparisonCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewComparisonCache creates a new ComparisonCache.
func NewComparisonCache(redis *RedisClient, ttl time.Duration) *ComparisonCache {
	return &ComparisonCache{redis: redis, ttl: ttl}
}

func (c *ComparisonCache) key(materialRequestID string) string {
	return fmt.Sprintf("comparison:mr:%s", materialRequestID)
}

// Set stores cmp. Demo comparisons are never cached.
func (c *ComparisonCache) Set(ctx context.Context, cmp quote.Comparison) error {
	if cmp.Demo {
		return nil
	}
	data, err := json.Marshal(cmp)
	if err != nil {
		return fmt.Errorf("failed to marshal comparison: %w", err)
	}
	return c.redis.Set(ctx, c.key(cmp.MaterialRequestID), string(data), c.ttl)
}

// Get returns the cached comparison or ErrMiss.
func (c *ComparisonCache) Get(ctx context.Context, materialRequestID string) (*quote.Comparison, error) {
	raw, err := c.redis.Get(ctx, c.key(materialRequestID))
	if err != nil {
		return nil, err
	}
	var cmp quote.Comparison
	if err := json.Unmarshal([]byte(raw), &cmp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comparison: %w", err)
	}
	return &cmp, nil
}

// Invalidate drops the cached comparison, e.g. after a new quote arrives.
func (c *ComparisonCache) Invalidate(ctx context.Context, materialRequestID string) error {
	return c.redis.Delete(ctx, c.key(materialRequestID))
}
