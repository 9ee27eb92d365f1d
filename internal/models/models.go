package models

import (
	"time"
)

// PollCategory identifies the class of contest a poll record belongs to
type PollCategory string

const (
	CategoryPresidential  PollCategory = "presidential"
	CategoryGenericBallot PollCategory = "generic-ballot"
	CategoryOther         PollCategory = "other"
)

// ValidCategory reports whether the given string names a known poll category
func ValidCategory(s string) bool {
	switch PollCategory(s) {
	case CategoryPresidential, CategoryGenericBallot, CategoryOther:
		return true
	}
	return false
}

// PollEntry is one candidate/party line within a single poll record.
// Percentages within a record need not sum to 100 (raw upstream data may
// include undecided voters).
type PollEntry struct {
	Candidate   string  `json:"candidate"`
	Affiliation string  `json:"affiliation,omitempty"`
	Percentage  float64 `json:"percentage"`
}

// PollRecord is the canonical shape every provider response is mapped into
type PollRecord struct {
	ID            string       `json:"id"`
	Category      PollCategory `json:"category"`
	State         string       `json:"state,omitempty"` // empty = national
	SampleSize    int          `json:"sample_size,omitempty"`
	MarginOfError float64      `json:"margin_of_error,omitempty"`
	DateConducted time.Time    `json:"date_conducted"`
	Pollster      string       `json:"pollster"`
	Provider      string       `json:"provider"` // provenance tag, stamped by the fetch chain
	Entries       []PollEntry  `json:"entries"`
}

// PollsResponse is the envelope returned by GetPolls and the unit stored
// in the poll cache
type PollsResponse struct {
	Records      []PollRecord `json:"records"`
	TotalCount   int          `json:"total_count"`
	SourcesUsed  []string     `json:"sources_used"`
	UsedFallback bool         `json:"used_fallback"`
	Note         string       `json:"note,omitempty"`
	Cached       bool         `json:"cached"`
	Timestamp    time.Time    `json:"timestamp"`
}

// ContributingPoll is one poll's contribution to an aggregate, kept for
// traceability
type ContributingPoll struct {
	Date       time.Time `json:"date"`
	Percentage float64   `json:"percentage"`
	Provider   string    `json:"provider"`
}

// AggregateResult holds the weighted running average and trend delta for
// one competing entity
type AggregateResult struct {
	Candidate       string             `json:"candidate"`
	Affiliation     string             `json:"affiliation,omitempty"`
	WeightedAverage float64            `json:"weighted_average"`
	TotalWeight     float64            `json:"total_weight"`
	TrendDelta      float64            `json:"trend_delta"`
	Polls           []ContributingPoll `json:"polls"`
}

// SeriesRow is one row of the time-series table: a date label, the pollster,
// and one column per entity present in that poll. An entity absent from a
// poll is an absent column, not a zero.
type SeriesRow struct {
	Date     string             `json:"date"`
	Pollster string             `json:"pollster"`
	Values   map[string]float64 `json:"values"`
}

// CacheStats is the payload of the cache administration stats endpoint
type CacheStats struct {
	EntryCount int      `json:"entry_count"`
	Keys       []string `json:"keys"`
}

// LogSeverity represents the severity level of a log entry
type LogSeverity string

const (
	LogSeverityLow    LogSeverity = "low"
	LogSeverityMedium LogSeverity = "medium"
	LogSeverityHigh   LogSeverity = "high"
)

// ProcessType represents the type of process that created the log
type ProcessType string

const (
	ProcessTypeRequest  ProcessType = "request"
	ProcessTypeInternal ProcessType = "internal"
)

// LogEvent represents a process-specific logging context
type LogEvent struct {
	ProcessID   string      `json:"process_id"`
	ProcessType ProcessType `json:"process_type"`
	StartTime   time.Time   `json:"start_time"`
	ClientIP    string      `json:"client_ip,omitempty"`
}

// LogEntry represents a structured log entry for database storage
type LogEntry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Severity    LogSeverity            `json:"severity,omitempty"`
	Message     string                 `json:"message"`
	Operation   string                 `json:"operation"`
	TargetName  string                 `json:"target_name,omitempty"`
	ProcessID   string                 `json:"process_id"`
	ProcessType ProcessType            `json:"process_type"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
