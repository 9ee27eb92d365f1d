package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pollpulse/internal/models"
)

// VoteHub is the adapter for the VoteHub polling API. VoteHub migrated to a
// topic-scoped v2 endpoint but still serves the older per-category path, so
// both are tried in order.
type VoteHub struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewVoteHub creates a VoteHub fetcher with a bounded per-attempt timeout
func NewVoteHub(baseURL, apiKey string, timeout time.Duration) Fetcher {
	return &VoteHub{
		name:    "VoteHub",
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provenance tag for this provider
func (v *VoteHub) Name() string {
	return v.name
}

// voteHubResponse is VoteHub's native payload shape
type voteHubResponse struct {
	Polls []voteHubPoll `json:"polls"`
}

type voteHubPoll struct {
	PollID        string          `json:"poll_id"`
	Topic         string          `json:"topic"`
	State         string          `json:"state"`
	SampleSize    int             `json:"sample_size"`
	MarginOfError float64         `json:"margin_of_error"`
	EndDate       string          `json:"end_date"`
	Pollster      string          `json:"pollster"`
	Results       []voteHubResult `json:"results"`
}

type voteHubResult struct {
	Name  string  `json:"name"`
	Party string  `json:"party"`
	Pct   float64 `json:"pct"`
}

// categoryTopics maps canonical categories to VoteHub v2 topic slugs
var categoryTopics = map[models.PollCategory]string{
	models.CategoryPresidential:  "presidential-general",
	models.CategoryGenericBallot: "generic-congressional",
	models.CategoryOther:         "other",
}

// Fetch tries the v2 topic endpoint first, then the legacy per-category
// endpoint, and returns the first usable payload
func (v *VoteHub) Fetch(ctx context.Context, category models.PollCategory) ([]models.PollRecord, error) {
	endpoints := []string{
		fmt.Sprintf("%s/v2/polls?topic=%s", v.baseURL, url.QueryEscape(categoryTopics[category])),
		fmt.Sprintf("%s/polls/%s", v.baseURL, url.PathEscape(string(category))),
	}

	var lastErr error
	for _, endpoint := range endpoints {
		records, err := v.fetchEndpoint(ctx, endpoint, category)
		if err != nil {
			lastErr = err
			continue
		}
		return records, nil
	}

	return nil, lastErr
}

// fetchEndpoint performs one bounded request against one candidate endpoint
func (v *VoteHub) fetchEndpoint(ctx context.Context, endpoint string, category models.PollCategory) ([]models.PollRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, models.NewProviderError(v.name, endpoint, "failed to create request", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "PollPulse/1.0")
	if v.apiKey != "" {
		req.Header.Set("X-Api-Key", v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, models.NewProviderError(v.name, endpoint, "request timed out", models.ErrProviderTimeout)
		}
		return nil, models.NewProviderError(v.name, endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewProviderError(v.name, endpoint,
			fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode), models.ErrProviderUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, models.NewProviderError(v.name, endpoint, "failed to read response body", err)
	}

	var payload voteHubResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, models.NewProviderError(v.name, endpoint, "malformed payload", err)
	}

	records := v.toRecords(payload, category)
	if len(records) == 0 {
		return nil, models.NewProviderError(v.name, endpoint, "empty payload", models.ErrEmptyPayload)
	}

	return records, nil
}

// toRecords maps VoteHub's native shape to canonical PollRecords. Polls with
// missing results or unparseable dates are skipped, not fatal.
func (v *VoteHub) toRecords(payload voteHubResponse, category models.PollCategory) []models.PollRecord {
	records := make([]models.PollRecord, 0, len(payload.Polls))

	for _, poll := range payload.Polls {
		if len(poll.Results) == 0 {
			continue
		}

		date, err := time.Parse("2006-01-02", poll.EndDate)
		if err != nil {
			continue
		}

		entries := make([]models.PollEntry, 0, len(poll.Results))
		for _, result := range poll.Results {
			if result.Name == "" {
				continue
			}
			entries = append(entries, models.PollEntry{
				Candidate:   result.Name,
				Affiliation: result.Party,
				Percentage:  result.Pct,
			})
		}
		if len(entries) == 0 {
			continue
		}

		records = append(records, models.PollRecord{
			ID:            poll.PollID,
			Category:      category,
			State:         poll.State,
			SampleSize:    poll.SampleSize,
			MarginOfError: poll.MarginOfError,
			DateConducted: date,
			Pollster:      poll.Pollster,
			Entries:       entries,
		})
	}

	return records
}
