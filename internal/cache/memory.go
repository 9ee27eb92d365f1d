package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pollpulse/internal/models"
)

// MemoryCache implements Service using in-memory storage
type MemoryCache struct {
	data  map[string]*cacheEntry
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// cacheEntry represents a single cache entry with expiration
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache whose background sweep runs
// at the given interval until Close is called
func NewMemoryCache(sweepInterval time.Duration) Service {
	return newMemoryCache(sweepInterval)
}

// newMemoryCache creates the concrete implementation
func newMemoryCache(sweepInterval time.Duration) *MemoryCache {
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}

	cache := &MemoryCache{
		data: make(map[string]*cacheEntry),
		stop: make(chan struct{}),
	}

	// Periodic sweep so memory does not grow unbounded for keys nobody re-reads
	go cache.sweepLoop(sweepInterval)

	return cache
}

// Get retrieves a cached value for the given key. Reading an expired entry
// removes it (lazy eviction).
func (m *MemoryCache) Get(ctx context.Context, key string) (interface{}, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	entry, exists := m.data[key]
	if !exists {
		return nil, models.ErrCacheUnavailable
	}

	if time.Now().After(entry.expiresAt) {
		delete(m.data, key)
		return nil, models.ErrCacheUnavailable
	}

	return entry.value, nil
}

// Set stores a value in the cache with the specified TTL, overwriting any
// prior entry for the key
func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("TTL must be positive, got: %v", ttl)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data[key] = &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}

	return nil
}

// Has reports whether the key is present and fresh
func (m *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := m.Get(ctx, key)
	return err == nil
}

// Delete removes an entry from the cache
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	delete(m.data, key)
	return nil
}

// Clear removes all entries
func (m *MemoryCache) Clear(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data = make(map[string]*cacheEntry)
	return nil
}

// Keys enumerates all stored keys, including entries not yet lazily evicted
func (m *MemoryCache) Keys(ctx context.Context) ([]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	return keys, nil
}

// Cleanup evicts all expired entries immediately
func (m *MemoryCache) Cleanup(ctx context.Context) error {
	now := time.Now()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for key, entry := range m.data {
		if now.After(entry.expiresAt) {
			delete(m.data, key)
		}
	}
	return nil
}

// Close stops the background sweep goroutine
func (m *MemoryCache) Close() error {
	m.once.Do(func() {
		close(m.stop)
	})
	return nil
}

// sweepLoop runs Cleanup on a ticker until the cache is closed
func (m *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = m.Cleanup(context.Background())
		case <-m.stop:
			return
		}
	}
}

// Size returns the current number of cached entries (for monitoring)
func (m *MemoryCache) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}
