package provider

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"pollpulse/internal/models"
)

// Synthetic generates structurally valid poll records when every real
// provider has failed. It sits behind the same Fetcher interface as real
// providers, and its randomness is seeded so tests are deterministic.
type Synthetic struct {
	count int
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewSynthetic creates a generator producing count records per fetch
func NewSynthetic(count int, seed int64) *Synthetic {
	if count <= 0 {
		count = 18
	}
	return &Synthetic{
		count: count,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Name returns the generator's provenance tag prefix
func (s *Synthetic) Name() string {
	return "Synthetic"
}

// Count returns the number of records generated per fetch
func (s *Synthetic) Count() int {
	return s.count
}

var syntheticPollsters = []string{
	"Harlan Research",
	"Civiq Analytics",
	"Meridian Insights",
	"Northstar Polling",
	"Beacon Field Group",
	"Atlas Opinion",
}

// syntheticMatchup is a fixed entity lineup per category; the leading weight
// nudges percentages apart so generated races look plausible
type syntheticContender struct {
	name        string
	affiliation string
	base        float64
}

var syntheticMatchups = map[models.PollCategory][]syntheticContender{
	models.CategoryPresidential: {
		{"Diane Morales", "D", 46},
		{"Grant Whitfield", "R", 45},
		{"Samuel Okafor", "I", 6},
	},
	models.CategoryGenericBallot: {
		{"Democrats", "D", 48},
		{"Republicans", "R", 47},
	},
	models.CategoryOther: {
		{"Approve", "", 49},
		{"Disapprove", "", 46},
	},
}

// Fetch generates the configured count of records for the category. Each
// record's percentages are renormalized to sum to 100.
func (s *Synthetic) Fetch(ctx context.Context, category models.PollCategory) ([]models.PollRecord, error) {
	contenders, ok := syntheticMatchups[category]
	if !ok {
		// Chain validates categories first; hitting this is a logic error
		return nil, fmt.Errorf("no synthetic matchup for category %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	records := make([]models.PollRecord, 0, s.count)

	for i := 0; i < s.count; i++ {
		pollster := syntheticPollsters[s.rng.Intn(len(syntheticPollsters))]

		// Raw draws around each contender's base, then renormalized to 100
		raw := make([]float64, len(contenders))
		var total float64
		for j, c := range contenders {
			raw[j] = math.Max(0.5, c.base+s.rng.Float64()*6-3)
			total += raw[j]
		}

		entries := make([]models.PollEntry, len(contenders))
		for j, c := range contenders {
			entries[j] = models.PollEntry{
				Candidate:   c.name,
				Affiliation: c.affiliation,
				Percentage:  math.Round(raw[j]/total*100*10) / 10,
			}
		}

		records = append(records, models.PollRecord{
			ID:            fmt.Sprintf("syn-%s-%d", category, i+1),
			Category:      category,
			SampleSize:    400 + s.rng.Intn(2100),
			MarginOfError: math.Round((2.0+s.rng.Float64()*2.5)*10) / 10,
			DateConducted: now.AddDate(0, 0, -s.rng.Intn(21)),
			Pollster:      pollster,
			Provider:      fmt.Sprintf("%s (Mock)", pollster),
			Entries:       entries,
		})
	}

	return records, nil
}
