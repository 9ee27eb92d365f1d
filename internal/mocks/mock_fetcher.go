package mocks

import (
	"context"

	"pollpulse/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockFetcher is a mock implementation of provider.Fetcher
type MockFetcher struct {
	mock.Mock
	ProviderName string
}

// Name returns the configured provider name
func (m *MockFetcher) Name() string {
	return m.ProviderName
}

// Fetch mocks the Fetch method of provider.Fetcher
func (m *MockFetcher) Fetch(ctx context.Context, category models.PollCategory) ([]models.PollRecord, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PollRecord), args.Error(1)
}
