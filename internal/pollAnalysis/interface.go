package pollAnalysis

import (
	"context"

	"pollpulse/internal/models"
)

// PollsQuery narrows a GetPolls request
type PollsQuery struct {
	State     string
	Candidate string
	Source    string
	Limit     int
}

// AggregateQuery narrows a running-average or series request
type AggregateQuery struct {
	WindowDays int
	State      string
	Source     string
	MaxPoints  int
}

// AnalysisService defines the poll aggregation operations exposed to the
// HTTP layer. External packages should use this interface, not the concrete
// implementation.
type AnalysisService interface {
	GetPolls(ctx context.Context, category string, query PollsQuery) (*models.PollsResponse, error)
	GetRunningAverage(ctx context.Context, category string, query AggregateQuery) (map[string]models.AggregateResult, error)
	GetSeries(ctx context.Context, category string, query AggregateQuery) ([]models.SeriesRow, error)
	CacheStats(ctx context.Context) (*models.CacheStats, error)
	InvalidateCacheKey(ctx context.Context, key string) error
	ClearCache(ctx context.Context) error
}
