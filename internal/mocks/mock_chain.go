package mocks

import (
	"context"

	"pollpulse/internal/models"
	"pollpulse/internal/provider"

	"github.com/stretchr/testify/mock"
)

// MockFetchChain is a mock implementation of pollAnalysis.FetchChain
type MockFetchChain struct {
	mock.Mock
}

// FetchPolls mocks the FetchPolls method of provider.Chain
func (m *MockFetchChain) FetchPolls(ctx context.Context, category models.PollCategory, filters provider.Filters) (*models.PollsResponse, error) {
	args := m.Called(ctx, category, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PollsResponse), args.Error(1)
}
