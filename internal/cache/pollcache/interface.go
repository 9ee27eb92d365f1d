package pollcache

import (
	"context"
	"time"

	"pollpulse/internal/models"
)

// Producer computes a fresh poll response on a cache miss, typically by
// running the provider fetch chain
type Producer func(ctx context.Context) (*models.PollsResponse, error)

// Service defines the fetch-or-compute cache used by every upstream-facing
// poll operation, plus the cache administration surface
type Service interface {
	// GetOrCompute returns the cached response for key if fresh, otherwise
	// invokes producer, caches its result under ttl (the configured default
	// when ttl is zero), and returns it. A producer failure is propagated
	// and nothing is cached. The bool reports a cache hit.
	GetOrCompute(ctx context.Context, key string, producer Producer, ttl time.Duration) (*models.PollsResponse, bool, error)
	Invalidate(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (*models.CacheStats, error)
}
