package pollAnalysis

import (
	"fmt"
	"testing"
	"time"

	"pollpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeries_AscendingAndCapped(t *testing.T) {
	var records []models.PollRecord
	for i := 0; i < 30; i++ {
		records = append(records, record(fmt.Sprintf("r%d", i), i, "", "VoteHub", 1000, entry("X", 45)))
	}

	rows := buildSeries(records, presidentialFilter(0), 20)

	assert.Len(t, rows, 20)
}

func TestBuildSeries_KeepsMostRecentPoints(t *testing.T) {
	old := record("old", 50, "", "VoteHub", 1000, entry("X", 30))
	mid := record("mid", 10, "", "VoteHub", 1000, entry("X", 40))
	fresh := record("fresh", 1, "", "VoteHub", 1000, entry("X", 50))

	rows := buildSeries([]models.PollRecord{fresh, old, mid}, presidentialFilter(0), 2)

	// The two newest records, date-ascending
	require.Len(t, rows, 2)
	assert.InDelta(t, 40.0, rows[0].Values["X"], 0.001)
	assert.InDelta(t, 50.0, rows[1].Values["X"], 0.001)
}

func TestBuildSeries_SparseColumns(t *testing.T) {
	records := []models.PollRecord{
		record("a", 2, "", "VoteHub", 1000,
			models.PollEntry{Candidate: "X", Percentage: 47},
			models.PollEntry{Candidate: "Y", Percentage: 44},
		),
		record("b", 1, "", "VoteHub", 1000,
			models.PollEntry{Candidate: "X", Percentage: 48},
		),
	}

	rows := buildSeries(records, presidentialFilter(0), 20)

	require.Len(t, rows, 2)
	assert.Contains(t, rows[0].Values, "Y")
	// A record without an entity omits the column rather than reporting zero
	_, present := rows[1].Values["Y"]
	assert.False(t, present)
}

func TestBuildSeries_NoWindowRestriction(t *testing.T) {
	// A record far older than any aggregation window still appears
	records := []models.PollRecord{
		record("ancient", 200, "", "VoteHub", 1000, entry("X", 42)),
	}

	filter := presidentialFilter(30)
	rows := buildSeries(records, filter, 20)

	assert.Len(t, rows, 1)
}

func TestBuildSeries_RowShape(t *testing.T) {
	rec := record("a", 3, "", "VoteHub", 1000, entry("X", 47))
	rec.Pollster = "Quinnipiac"

	rows := buildSeries([]models.PollRecord{rec}, presidentialFilter(0), 20)

	require.Len(t, rows, 1)
	assert.Equal(t, "Quinnipiac", rows[0].Pollster)
	assert.Equal(t, time.Now().UTC().AddDate(0, 0, -3).Format("Jan 2"), rows[0].Date)
	assert.InDelta(t, 47.0, rows[0].Values["X"], 0.001)
}

func TestBuildSeries_GeographyFilter(t *testing.T) {
	records := []models.PollRecord{
		record("nat", 1, "", "VoteHub", 1000, entry("X", 47)),
		record("pa", 2, "PA", "VoteHub", 1000, entry("X", 44)),
	}

	filter := presidentialFilter(0)
	filter.geography = "PA"
	rows := buildSeries(records, filter, 20)

	require.Len(t, rows, 1)
	assert.InDelta(t, 44.0, rows[0].Values["X"], 0.001)
}

func TestBuildSeries_Empty(t *testing.T) {
	rows := buildSeries(nil, presidentialFilter(0), 20)
	assert.Empty(t, rows)
}
