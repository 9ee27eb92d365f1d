package mocks

import (
	"context"

	"pollpulse/internal/models"
	"pollpulse/internal/pollAnalysis"

	"github.com/stretchr/testify/mock"
)

// MockAnalysisService is a mock implementation of pollAnalysis.AnalysisService
type MockAnalysisService struct {
	mock.Mock
}

// GetPolls mocks the GetPolls method of pollAnalysis.AnalysisService
func (m *MockAnalysisService) GetPolls(ctx context.Context, category string, query pollAnalysis.PollsQuery) (*models.PollsResponse, error) {
	args := m.Called(ctx, category, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PollsResponse), args.Error(1)
}

// GetRunningAverage mocks the GetRunningAverage method of pollAnalysis.AnalysisService
func (m *MockAnalysisService) GetRunningAverage(ctx context.Context, category string, query pollAnalysis.AggregateQuery) (map[string]models.AggregateResult, error) {
	args := m.Called(ctx, category, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.AggregateResult), args.Error(1)
}

// GetSeries mocks the GetSeries method of pollAnalysis.AnalysisService
func (m *MockAnalysisService) GetSeries(ctx context.Context, category string, query pollAnalysis.AggregateQuery) ([]models.SeriesRow, error) {
	args := m.Called(ctx, category, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SeriesRow), args.Error(1)
}

// CacheStats mocks the CacheStats method of pollAnalysis.AnalysisService
func (m *MockAnalysisService) CacheStats(ctx context.Context) (*models.CacheStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CacheStats), args.Error(1)
}

// InvalidateCacheKey mocks the InvalidateCacheKey method of pollAnalysis.AnalysisService
func (m *MockAnalysisService) InvalidateCacheKey(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// ClearCache mocks the ClearCache method of pollAnalysis.AnalysisService
func (m *MockAnalysisService) ClearCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
