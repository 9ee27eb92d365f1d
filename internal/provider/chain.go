package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"pollpulse/internal/logger"
	"pollpulse/internal/models"
)

// Filters narrows a fetched record set. State semantics: empty means no
// geography filtering, "national" keeps only records without a state code,
// anything else is an exact state match. Candidate is a case-insensitive
// substring match against entry names.
type Filters struct {
	State     string
	Candidate string
}

// Chain attempts a prioritized list of providers for a logical poll query.
// Every provider failure is isolated: logged and skipped, never fatal. Only
// when the merged record set ends up empty does the chain fall back to the
// synthetic generator, so callers never observe an empty or error result
// for a valid category.
type Chain struct {
	providers []Fetcher
	synthetic *Synthetic
	logger    logger.Service
	timeout   time.Duration
}

// NewChain creates a fetch chain. Providers are attempted in the given
// order; perAttemptTimeout bounds each provider attempt independently.
func NewChain(providers []Fetcher, synthetic *Synthetic, logger logger.Service, perAttemptTimeout time.Duration) *Chain {
	if perAttemptTimeout <= 0 {
		perAttemptTimeout = 5 * time.Second
	}
	return &Chain{
		providers: providers,
		synthetic: synthetic,
		logger:    logger,
		timeout:   perAttemptTimeout,
	}
}

// FetchPolls runs the provider chain for the category and returns the
// merged, filtered, newest-first record set. The only caller-visible error
// is an unknown category, reported before any fetch work begins.
func (c *Chain) FetchPolls(ctx context.Context, category models.PollCategory, filters Filters) (*models.PollsResponse, error) {
	if !models.ValidCategory(string(category)) {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
	}

	var merged []models.PollRecord
	var sourcesUsed []string

	for _, fetcher := range c.providers {
		// A spent caller deadline abandons remaining providers and falls
		// through to fallback rather than surfacing a timeout
		if ctx.Err() != nil {
			c.logger.LogInfo(ctx, logger.OpProviderFetch, "Deadline exceeded, abandoning remaining providers", map[string]interface{}{
				"category": string(category),
			})
			break
		}

		records, err := c.attempt(ctx, fetcher, category)
		if err != nil {
			c.logger.LogError(ctx, logger.OpProviderFetch, fetcher.Name(), "Provider attempt failed, continuing chain", err, models.LogSeverityLow, map[string]interface{}{
				"category": string(category),
			})
			continue
		}

		for i := range records {
			if records[i].Provider == "" {
				records[i].Provider = fetcher.Name()
			}
		}
		merged = append(merged, records...)
		sourcesUsed = append(sourcesUsed, fetcher.Name())

		c.logger.LogSuccess(ctx, logger.OpProviderFetch, fetcher.Name(), "Provider returned records", map[string]interface{}{
			"category": string(category),
			"count":    len(records),
		})
	}

	if len(merged) == 0 {
		return c.fallback(ctx, category)
	}

	filtered := applyFilters(merged, filters)
	sortNewestFirst(filtered)

	return &models.PollsResponse{
		Records:     filtered,
		TotalCount:  len(filtered),
		SourcesUsed: sourcesUsed,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// attempt runs one provider under its own bounded timeout. A non-error but
// empty result is reported as an error so the chain treats it as a soft
// failure.
func (c *Chain) attempt(ctx context.Context, fetcher Fetcher, category models.PollCategory) ([]models.PollRecord, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, err := fetcher.Fetch(attemptCtx, category)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, models.NewProviderError(fetcher.Name(), "", "no usable records", models.ErrEmptyPayload)
	}
	return records, nil
}

// fallback generates the synthetic record set. A generator error would be a
// programming error and is the only failure FetchPolls can propagate for a
// valid category.
func (c *Chain) fallback(ctx context.Context, category models.PollCategory) (*models.PollsResponse, error) {
	c.logger.LogInfo(ctx, logger.OpFallback, "All providers failed, generating synthetic records", map[string]interface{}{
		"category": string(category),
		"count":    c.synthetic.Count(),
	})

	records, err := c.synthetic.Fetch(ctx, category)
	if err != nil {
		return nil, err
	}

	sortNewestFirst(records)

	return &models.PollsResponse{
		Records:      records,
		TotalCount:   len(records),
		SourcesUsed:  []string{c.synthetic.Name()},
		UsedFallback: true,
		Note:         "All live poll providers were unavailable; synthetic sample data returned.",
		Timestamp:    time.Now().UTC(),
	}, nil
}

// applyFilters narrows records by geography and candidate substring
func applyFilters(records []models.PollRecord, filters Filters) []models.PollRecord {
	out := make([]models.PollRecord, 0, len(records))

	for _, record := range records {
		switch {
		case filters.State == "":
			// no geography filtering
		case strings.EqualFold(filters.State, "national"):
			if record.State != "" {
				continue
			}
		default:
			if !strings.EqualFold(record.State, filters.State) {
				continue
			}
		}

		if filters.Candidate != "" && !hasCandidate(record, filters.Candidate) {
			continue
		}

		out = append(out, record)
	}

	return out
}

// hasCandidate reports whether any entry name contains the substring,
// case-insensitively
func hasCandidate(record models.PollRecord, candidate string) bool {
	needle := strings.ToLower(candidate)
	for _, entry := range record.Entries {
		if strings.Contains(strings.ToLower(entry.Candidate), needle) {
			return true
		}
	}
	return false
}

// sortNewestFirst orders records by descending conducted date
func sortNewestFirst(records []models.PollRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DateConducted.After(records[j].DateConducted)
	})
}
