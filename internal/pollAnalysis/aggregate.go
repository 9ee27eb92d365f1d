package pollAnalysis

import (
	"strings"
	"time"

	"pollpulse/internal/models"
)

// defaultSampleWeight stands in for records that did not report a sample size
const defaultSampleWeight = 1000.0

// recordFilter narrows a record set for aggregation. Geography semantics
// match the fetch chain: empty = no filter, "national" = records without a
// state code, otherwise exact state match. Source is a case-insensitive
// substring match against the provenance tag. A zero window disables the
// trailing-window restriction.
type recordFilter struct {
	category   models.PollCategory
	windowDays int
	geography  string
	source     string
	now        time.Time
}

func (f recordFilter) apply(records []models.PollRecord) []models.PollRecord {
	var cutoff time.Time
	if f.windowDays > 0 {
		cutoff = f.now.AddDate(0, 0, -f.windowDays)
	}

	out := make([]models.PollRecord, 0, len(records))
	for _, record := range records {
		if record.Category != f.category {
			continue
		}
		if f.windowDays > 0 && record.DateConducted.Before(cutoff) {
			continue
		}

		switch {
		case f.geography == "":
		case strings.EqualFold(f.geography, "national"):
			if record.State != "" {
				continue
			}
		default:
			if !strings.EqualFold(record.State, f.geography) {
				continue
			}
		}

		if f.source != "" && !strings.Contains(strings.ToLower(record.Provider), strings.ToLower(f.source)) {
			continue
		}

		out = append(out, record)
	}
	return out
}

// runningAverage computes the sample-size-weighted mean percentage and a
// short-window trend delta per competing entity. Averages across entities
// are intentionally not renormalized to 100: real polls carry undecided
// slack and the aggregate preserves it.
func runningAverage(records []models.PollRecord, filter recordFilter, trendDays int) map[string]models.AggregateResult {
	filtered := filter.apply(records)
	if len(filtered) == 0 {
		// No data is an empty map, not an error
		return map[string]models.AggregateResult{}
	}

	type accumulator struct {
		weightedSum float64
		totalWeight float64
		affiliation string
		polls       []models.ContributingPoll
	}

	acc := make(map[string]*accumulator)

	for _, record := range filtered {
		weight := defaultSampleWeight
		if record.SampleSize > 0 {
			weight = float64(record.SampleSize)
		}

		for _, entry := range record.Entries {
			a, ok := acc[entry.Candidate]
			if !ok {
				a = &accumulator{affiliation: entry.Affiliation}
				acc[entry.Candidate] = a
			}
			a.weightedSum += entry.Percentage * weight
			a.totalWeight += weight
			a.polls = append(a.polls, models.ContributingPoll{
				Date:       record.DateConducted,
				Percentage: entry.Percentage,
				Provider:   record.Provider,
			})
		}
	}

	results := make(map[string]models.AggregateResult, len(acc))
	for candidate, a := range acc {
		results[candidate] = models.AggregateResult{
			Candidate:       candidate,
			Affiliation:     a.affiliation,
			WeightedAverage: a.weightedSum / a.totalWeight,
			TotalWeight:     a.totalWeight,
			TrendDelta:      trendDelta(a.polls, filter.now, trendDays),
			Polls:           a.polls,
		}
	}

	return results
}

// trendDelta compares the unweighted mean of the most recent trendDays-day
// partition against the partition before it. The trend deliberately uses
// simple means rather than sample weighting; it is a coarser signal than
// the running average. Either partition being empty yields zero.
func trendDelta(polls []models.ContributingPoll, now time.Time, trendDays int) float64 {
	if trendDays <= 0 {
		trendDays = 7
	}

	recentCutoff := now.AddDate(0, 0, -trendDays)
	previousCutoff := now.AddDate(0, 0, -2*trendDays)

	var recentSum, previousSum float64
	var recentCount, previousCount int

	for _, poll := range polls {
		switch {
		case !poll.Date.Before(recentCutoff):
			recentSum += poll.Percentage
			recentCount++
		case !poll.Date.Before(previousCutoff):
			previousSum += poll.Percentage
			previousCount++
		}
	}

	if recentCount == 0 || previousCount == 0 {
		return 0
	}

	return recentSum/float64(recentCount) - previousSum/float64(previousCount)
}
