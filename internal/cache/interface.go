package cache

import (
	"context"
	"time"
)

// Service defines the interface for generic freshness-bounded caching.
// External packages should use this interface, not the concrete implementations.
type Service interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Has(ctx context.Context, key string) bool
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	// Keys enumerates all currently stored keys. It may include entries
	// whose TTL has passed but which have not been evicted yet; callers
	// needing freshness must use Get or Has.
	Keys(ctx context.Context) ([]string, error)
	// Cleanup evicts all expired entries immediately. Implementations with
	// native expiry may treat this as a no-op.
	Cleanup(ctx context.Context) error
	Close() error
}
