package provider

import (
	"context"

	"pollpulse/internal/models"
)

// Fetcher is the capability interface every upstream poll source implements,
// including the synthetic generator. A Fetcher owns its endpoint(s), parses
// its provider-native response shape, and maps it to canonical PollRecords.
// The fetch chain stamps the Provider provenance tag on any record whose
// tag is still empty; the synthetic generator tags its own records.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, category models.PollCategory) ([]models.PollRecord, error)
}
