package mocks

import (
	"context"
	"time"

	"pollpulse/internal/cache/pollcache"
	"pollpulse/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockPollCache is a mock implementation of pollcache.Service
type MockPollCache struct {
	mock.Mock
}

// GetOrCompute mocks the GetOrCompute method of pollcache.Service. When the
// mocked return value is nil, the supplied producer runs for real, which
// lets service tests exercise the miss path without a backing cache.
func (m *MockPollCache) GetOrCompute(ctx context.Context, key string, producer pollcache.Producer, ttl time.Duration) (*models.PollsResponse, bool, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		response, err := producer(ctx)
		return response, false, err
	}
	return args.Get(0).(*models.PollsResponse), args.Bool(1), args.Error(2)
}

// Invalidate mocks the Invalidate method of pollcache.Service
func (m *MockPollCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Clear mocks the Clear method of pollcache.Service
func (m *MockPollCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stats mocks the Stats method of pollcache.Service
func (m *MockPollCache) Stats(ctx context.Context) (*models.CacheStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CacheStats), args.Error(1)
}
