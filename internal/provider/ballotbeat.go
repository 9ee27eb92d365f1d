package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pollpulse/internal/models"
)

// BallotBeat is the adapter for the BallotBeat data service. Queries go
// through a single POST endpoint; the API key travels as a query parameter.
type BallotBeat struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewBallotBeat creates a BallotBeat fetcher with a bounded per-attempt timeout
func NewBallotBeat(baseURL, apiKey string, timeout time.Duration) Fetcher {
	return &BallotBeat{
		name:    "BallotBeat",
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provenance tag for this provider
func (b *BallotBeat) Name() string {
	return b.name
}

// flexFloat tolerates BallotBeat sending percentages as numbers or strings
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(val)
	return nil
}

// ballotBeatResponse is BallotBeat's native payload shape
type ballotBeatResponse struct {
	Data struct {
		Surveys []ballotBeatSurvey `json:"surveys"`
	} `json:"data"`
}

type ballotBeatSurvey struct {
	Ref       string    `json:"ref"`
	Region    string    `json:"region"`
	Completed string    `json:"completed"` // RFC 3339
	Firm      string    `json:"firm"`
	Respondents int     `json:"respondents"`
	ErrMargin flexFloat `json:"err_margin"`
	Standings []struct {
		Contender string    `json:"contender"`
		Party     string    `json:"party"`
		Share     flexFloat `json:"share"`
	} `json:"standings"`
}

// ballotBeatRaces maps canonical categories to BallotBeat race identifiers
var ballotBeatRaces = map[models.PollCategory]string{
	models.CategoryPresidential:  "us-president",
	models.CategoryGenericBallot: "us-house-generic",
	models.CategoryOther:         "misc",
}

// Fetch queries BallotBeat's survey endpoint for the requested race
func (b *BallotBeat) Fetch(ctx context.Context, category models.PollCategory) ([]models.PollRecord, error) {
	endpoint := fmt.Sprintf("%s/api/v1/surveys?key=%s", b.baseURL, b.apiKey)

	query, err := json.Marshal(map[string]string{"race": ballotBeatRaces[category]})
	if err != nil {
		return nil, models.NewProviderError(b.name, endpoint, "failed to encode query", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(query))
	if err != nil {
		return nil, models.NewProviderError(b.name, endpoint, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "PollPulse/1.0")

	resp, err := b.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, models.NewProviderError(b.name, endpoint, "request timed out", models.ErrProviderTimeout)
		}
		return nil, models.NewProviderError(b.name, endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.NewProviderError(b.name, endpoint,
			fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode), models.ErrProviderUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, models.NewProviderError(b.name, endpoint, "failed to read response body", err)
	}

	var payload ballotBeatResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, models.NewProviderError(b.name, endpoint, "malformed payload", err)
	}

	records := b.toRecords(payload, category)
	if len(records) == 0 {
		return nil, models.NewProviderError(b.name, endpoint, "empty payload", models.ErrEmptyPayload)
	}

	return records, nil
}

// toRecords maps BallotBeat surveys to canonical PollRecords, skipping
// surveys with no standings or unparseable completion dates
func (b *BallotBeat) toRecords(payload ballotBeatResponse, category models.PollCategory) []models.PollRecord {
	records := make([]models.PollRecord, 0, len(payload.Data.Surveys))

	for _, survey := range payload.Data.Surveys {
		if len(survey.Standings) == 0 {
			continue
		}

		date, err := time.Parse(time.RFC3339, survey.Completed)
		if err != nil {
			continue
		}

		entries := make([]models.PollEntry, 0, len(survey.Standings))
		for _, standing := range survey.Standings {
			if standing.Contender == "" {
				continue
			}
			entries = append(entries, models.PollEntry{
				Candidate:   standing.Contender,
				Affiliation: standing.Party,
				Percentage:  float64(standing.Share),
			})
		}
		if len(entries) == 0 {
			continue
		}

		// BallotBeat uses "US" for national surveys; canonical form is empty
		state := survey.Region
		if strings.EqualFold(state, "US") {
			state = ""
		}

		records = append(records, models.PollRecord{
			ID:            survey.Ref,
			Category:      category,
			State:         state,
			SampleSize:    survey.Respondents,
			MarginOfError: float64(survey.ErrMargin),
			DateConducted: date,
			Pollster:      survey.Firm,
			Entries:       entries,
		})
	}

	return records
}
