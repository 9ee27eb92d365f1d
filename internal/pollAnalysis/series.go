package pollAnalysis

import (
	"sort"

	"pollpulse/internal/models"
)

// defaultSeriesPoints caps the series length when the caller does not
const defaultSeriesPoints = 20

// buildSeries produces a date-ascending table with one row per poll and one
// column per entity present in that poll. Rows are sparse: an entity missing
// from a poll is a missing column, never a zero. No trailing-window
// restriction applies; only the point cap does.
func buildSeries(records []models.PollRecord, filter recordFilter, maxPoints int) []models.SeriesRow {
	if maxPoints <= 0 {
		maxPoints = defaultSeriesPoints
	}

	// Series ignores the window restriction by construction
	filter.windowDays = 0
	filtered := filter.apply(records)

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].DateConducted.Before(filtered[j].DateConducted)
	})

	// Keep only the most recent maxPoints, still date-ascending
	if len(filtered) > maxPoints {
		filtered = filtered[len(filtered)-maxPoints:]
	}

	rows := make([]models.SeriesRow, 0, len(filtered))
	for _, record := range filtered {
		values := make(map[string]float64, len(record.Entries))
		for _, entry := range record.Entries {
			values[entry.Candidate] = entry.Percentage
		}

		rows = append(rows, models.SeriesRow{
			Date:     record.DateConducted.Format("Jan 2"),
			Pollster: record.Pollster,
			Values:   values,
		})
	}

	return rows
}
