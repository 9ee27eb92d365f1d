package pollAnalysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pollpulse/internal/cache/pollcache"
	"pollpulse/internal/logger"
	"pollpulse/internal/models"
	"pollpulse/internal/provider"
)

// FetchChain is the upstream dependency producing merged poll responses;
// satisfied by provider.Chain
type FetchChain interface {
	FetchPolls(ctx context.Context, category models.PollCategory, filters provider.Filters) (*models.PollsResponse, error)
}

// Service implements the AnalysisService interface
type Service struct {
	chain           FetchChain
	pollCache       pollcache.Service
	logger          logger.Service
	avgWindowDays   int
	trendWindowDays int
}

// NewService creates a new poll analysis service
func NewService(
	chain FetchChain,
	pollCache pollcache.Service,
	logger logger.Service,
	avgWindowDays int,
	trendWindowDays int,
) AnalysisService {
	if avgWindowDays <= 0 {
		avgWindowDays = 30
	}
	if trendWindowDays <= 0 {
		trendWindowDays = 7
	}
	return &Service{
		chain:           chain,
		pollCache:       pollCache,
		logger:          logger,
		avgWindowDays:   avgWindowDays,
		trendWindowDays: trendWindowDays,
	}
}

// GetPolls returns the merged provider record set for a category, cached
// under the query's key. Source filtering and the limit are applied per
// request over the cached set.
func (s *Service) GetPolls(ctx context.Context, category string, query PollsQuery) (*models.PollsResponse, error) {
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
	}
	cat := models.PollCategory(category)

	start := time.Now()
	key := pollcache.Key(category, query.State, query.Candidate, "")

	cached, hit, err := s.pollCache.GetOrCompute(ctx, key, func(ctx context.Context) (*models.PollsResponse, error) {
		return s.chain.FetchPolls(ctx, cat, provider.Filters{
			State:     query.State,
			Candidate: query.Candidate,
		})
	}, 0)
	if err != nil {
		s.logger.LogError(ctx, logger.OpGetPolls, category, "Failed to produce poll records", err, models.LogSeverityMedium, map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	if hit {
		s.logger.LogSuccess(ctx, logger.OpCacheHit, key, "Served poll records from cache", map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
	} else {
		s.logger.LogInfo(ctx, logger.OpCacheMiss, fmt.Sprintf("Cache miss for key: %s", key), map[string]interface{}{
			"key": key,
		})
	}

	response := s.shapeResponse(cached, query, hit)

	s.logger.LogSuccess(ctx, logger.OpGetPolls, category, "Completed poll retrieval", map[string]interface{}{
		"records":       response.TotalCount,
		"used_fallback": response.UsedFallback,
		"cached":        hit,
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	return response, nil
}

// GetRunningAverage computes the weighted running average and trend per
// entity over the cached category record set
func (s *Service) GetRunningAverage(ctx context.Context, category string, query AggregateQuery) (map[string]models.AggregateResult, error) {
	cached, err := s.categoryRecords(ctx, category)
	if err != nil {
		return nil, err
	}

	windowDays := query.WindowDays
	if windowDays <= 0 {
		windowDays = s.avgWindowDays
	}

	results := runningAverage(cached.Records, recordFilter{
		category:   models.PollCategory(category),
		windowDays: windowDays,
		geography:  query.State,
		source:     query.Source,
		now:        time.Now().UTC(),
	}, s.trendWindowDays)

	s.logger.LogSuccess(ctx, logger.OpRunningAverage, category, "Computed running average", map[string]interface{}{
		"entities":    len(results),
		"window_days": windowDays,
	})

	return results, nil
}

// GetSeries builds the date-ascending capped series table over the cached
// category record set
func (s *Service) GetSeries(ctx context.Context, category string, query AggregateQuery) ([]models.SeriesRow, error) {
	cached, err := s.categoryRecords(ctx, category)
	if err != nil {
		return nil, err
	}

	rows := buildSeries(cached.Records, recordFilter{
		category:  models.PollCategory(category),
		geography: query.State,
		source:    query.Source,
		now:       time.Now().UTC(),
	}, query.MaxPoints)

	s.logger.LogSuccess(ctx, logger.OpSeries, category, "Built poll series", map[string]interface{}{
		"points": len(rows),
	})

	return rows, nil
}

// CacheStats reports the current cache keyspace
func (s *Service) CacheStats(ctx context.Context) (*models.CacheStats, error) {
	return s.pollCache.Stats(ctx)
}

// InvalidateCacheKey removes one cached entry
func (s *Service) InvalidateCacheKey(ctx context.Context, key string) error {
	s.logger.LogInfo(ctx, logger.OpCacheAdmin, fmt.Sprintf("Invalidating cache key: %s", key), nil)
	return s.pollCache.Invalidate(ctx, key)
}

// ClearCache removes all cached entries
func (s *Service) ClearCache(ctx context.Context) error {
	s.logger.LogInfo(ctx, logger.OpCacheAdmin, "Clearing poll cache", nil)
	return s.pollCache.Clear(ctx)
}

// categoryRecords fetches (or serves cached) the full unfiltered record set
// for a category; aggregation filters are applied in memory per request
func (s *Service) categoryRecords(ctx context.Context, category string) (*models.PollsResponse, error) {
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
	}
	cat := models.PollCategory(category)

	key := pollcache.Key(category, "", "", "")
	cached, _, err := s.pollCache.GetOrCompute(ctx, key, func(ctx context.Context) (*models.PollsResponse, error) {
		return s.chain.FetchPolls(ctx, cat, provider.Filters{})
	}, 0)
	return cached, err
}

// shapeResponse applies the per-request source filter and limit over the
// cached envelope without mutating it
func (s *Service) shapeResponse(cached *models.PollsResponse, query PollsQuery, hit bool) *models.PollsResponse {
	records := cached.Records
	if query.Source != "" {
		needle := strings.ToLower(query.Source)
		filtered := make([]models.PollRecord, 0, len(records))
		for _, record := range records {
			if strings.Contains(strings.ToLower(record.Provider), needle) {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	if query.Limit > 0 && len(records) > query.Limit {
		records = records[:query.Limit]
	}

	return &models.PollsResponse{
		Records:      records,
		TotalCount:   len(records),
		SourcesUsed:  cached.SourcesUsed,
		UsedFallback: cached.UsedFallback,
		Note:         cached.Note,
		Cached:       hit,
		Timestamp:    cached.Timestamp,
	}
}
