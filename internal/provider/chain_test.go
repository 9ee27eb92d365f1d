package provider_test

import (
	"context"
	"testing"
	"time"

	"pollpulse/internal/mocks"
	"pollpulse/internal/models"
	"pollpulse/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testRecords(provider string, state string, count int, newest time.Time) []models.PollRecord {
	records := make([]models.PollRecord, count)
	for i := 0; i < count; i++ {
		records[i] = models.PollRecord{
			ID:            provider + "-" + string(rune('a'+i)),
			Category:      models.CategoryPresidential,
			State:         state,
			SampleSize:    1000,
			DateConducted: newest.AddDate(0, 0, -i),
			Pollster:      "Ipsos",
			Entries: []models.PollEntry{
				{Candidate: "Diane Morales", Affiliation: "D", Percentage: 47},
				{Candidate: "Grant Whitfield", Affiliation: "R", Percentage: 45},
			},
		}
	}
	return records
}

func newTestChain(providers []provider.Fetcher) *provider.Chain {
	return provider.NewChain(providers, provider.NewSynthetic(20, 42), mocks.NewRelaxedLogger(), 5*time.Second)
}

func TestChain_MergesAcrossProviders(t *testing.T) {
	now := time.Now().UTC()

	// Provider A times out, B and C respond
	providerA := &mocks.MockFetcher{ProviderName: "VoteHub"}
	providerA.On("Fetch", mock.Anything, models.CategoryPresidential).
		Return(nil, models.NewProviderError("VoteHub", "", "request timed out", models.ErrProviderTimeout))

	providerB := &mocks.MockFetcher{ProviderName: "BallotBeat"}
	providerB.On("Fetch", mock.Anything, models.CategoryPresidential).
		Return(testRecords("bb", "", 5, now), nil)

	providerC := &mocks.MockFetcher{ProviderName: "StatePulse"}
	providerC.On("Fetch", mock.Anything, models.CategoryPresidential).
		Return(testRecords("sp", "", 3, now.AddDate(0, 0, -1)), nil)

	chain := newTestChain([]provider.Fetcher{providerA, providerB, providerC})

	response, err := chain.FetchPolls(context.Background(), models.CategoryPresidential, provider.Filters{})
	require.NoError(t, err)

	assert.Len(t, response.Records, 8)
	assert.Equal(t, 8, response.TotalCount)
	assert.False(t, response.UsedFallback)
	assert.Equal(t, []string{"BallotBeat", "StatePulse"}, response.SourcesUsed)

	// Provenance is stamped per contributing provider
	providers := map[string]int{}
	for _, record := range response.Records {
		providers[record.Provider]++
	}
	assert.Equal(t, 5, providers["BallotBeat"])
	assert.Equal(t, 3, providers["StatePulse"])

	// Newest-first ordering
	for i := 1; i < len(response.Records); i++ {
		assert.False(t, response.Records[i].DateConducted.After(response.Records[i-1].DateConducted))
	}
}

func TestChain_AllProvidersFail_SyntheticFallback(t *testing.T) {
	failing := &mocks.MockFetcher{ProviderName: "VoteHub"}
	failing.On("Fetch", mock.Anything, models.CategoryPresidential).
		Return(nil, models.ErrProviderUnavailable)

	chain := newTestChain([]provider.Fetcher{failing})

	response, err := chain.FetchPolls(context.Background(), models.CategoryPresidential, provider.Filters{})
	require.NoError(t, err)

	assert.True(t, response.UsedFallback)
	assert.NotEmpty(t, response.Note)
	assert.Equal(t, []string{"Synthetic"}, response.SourcesUsed)
	assert.Len(t, response.Records, 20, "fallback returns exactly the configured synthetic count")

	// Synthetic records are mock-tagged and renormalized
	for _, record := range response.Records {
		assert.Contains(t, record.Provider, "(Mock)")
		var sum float64
		for _, entry := range record.Entries {
			sum += entry.Percentage
		}
		assert.InDelta(t, 100.0, sum, 0.5, "per-record percentages sum to 100 within rounding")
	}
}

func TestChain_EmptyPayloadIsSoftFailure(t *testing.T) {
	empty := &mocks.MockFetcher{ProviderName: "VoteHub"}
	empty.On("Fetch", mock.Anything, models.CategoryGenericBallot).
		Return([]models.PollRecord{}, nil)

	chain := newTestChain([]provider.Fetcher{empty})

	response, err := chain.FetchPolls(context.Background(), models.CategoryGenericBallot, provider.Filters{})
	require.NoError(t, err)
	assert.True(t, response.UsedFallback)
	assert.NotEmpty(t, response.Records)
}

func TestChain_InvalidCategory(t *testing.T) {
	chain := newTestChain(nil)

	response, err := chain.FetchPolls(context.Background(), "senate-special", provider.Filters{})
	assert.Nil(t, response)
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestChain_GeographyFilters(t *testing.T) {
	now := time.Now().UTC()

	national := testRecords("nat", "", 2, now)
	state := testRecords("pa", "PA", 2, now)

	fetcher := &mocks.MockFetcher{ProviderName: "VoteHub"}
	fetcher.On("Fetch", mock.Anything, models.CategoryPresidential).
		Return(append(national, state...), nil)

	chain := newTestChain([]provider.Fetcher{fetcher})

	response, err := chain.FetchPolls(context.Background(), models.CategoryPresidential, provider.Filters{State: "national"})
	require.NoError(t, err)
	assert.Len(t, response.Records, 2)
	for _, record := range response.Records {
		assert.Empty(t, record.State)
	}

	response, err = chain.FetchPolls(context.Background(), models.CategoryPresidential, provider.Filters{State: "PA"})
	require.NoError(t, err)
	assert.Len(t, response.Records, 2)
	for _, record := range response.Records {
		assert.Equal(t, "PA", record.State)
	}

	response, err = chain.FetchPolls(context.Background(), models.CategoryPresidential, provider.Filters{})
	require.NoError(t, err)
	assert.Len(t, response.Records, 4)
}

func TestChain_CandidateFilter(t *testing.T) {
	now := time.Now().UTC()

	withMorales := testRecords("a", "", 1, now)
	other := []models.PollRecord{{
		ID:            "b-1",
		Category:      models.CategoryPresidential,
		DateConducted: now,
		Pollster:      "Gallup",
		Entries: []models.PollEntry{
			{Candidate: "Samuel Okafor", Affiliation: "I", Percentage: 12},
		},
	}}

	fetcher := &mocks.MockFetcher{ProviderName: "VoteHub"}
	fetcher.On("Fetch", mock.Anything, models.CategoryPresidential).
		Return(append(withMorales, other...), nil)

	chain := newTestChain([]provider.Fetcher{fetcher})

	response, err := chain.FetchPolls(context.Background(), models.CategoryPresidential, provider.Filters{Candidate: "morales"})
	require.NoError(t, err)
	assert.Len(t, response.Records, 1)
	assert.Equal(t, "a-a", response.Records[0].ID)
}

func TestChain_CallerDeadlineFallsBackToSynthetic(t *testing.T) {
	// Never-called fetcher: the context is already spent
	fetcher := &mocks.MockFetcher{ProviderName: "VoteHub"}

	chain := newTestChain([]provider.Fetcher{fetcher})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	response, err := chain.FetchPolls(ctx, models.CategoryPresidential, provider.Filters{})
	require.NoError(t, err)
	assert.True(t, response.UsedFallback)
	fetcher.AssertNotCalled(t, "Fetch")
}
