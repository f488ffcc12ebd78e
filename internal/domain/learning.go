package domain

import "time"

// CacheEntry memoizes one safe-operation ExecutionResult. Entries are never
// created for mutating operations.
type CacheEntry struct {
	Key       string          `json:"key"`
	Intent    IntentKind      `json:"intent"`
	Entity    string          `json:"entity"`
	Result    ExecutionResult `json:"result"`
	Rendered  string          `json:"rendered"`
	CreatedAt time.Time       `json:"created_at"`
}

// LearningOutcome summarizes how a pipeline run ended.
type LearningOutcome string

const (
	OutcomeSuccess     LearningOutcome = "success"
	OutcomePreviewed   LearningOutcome = "previewed"
	OutcomeFailed      LearningOutcome = "failed"
	OutcomeAmbiguous   LearningOutcome = "ambiguous"
	OutcomeNotFound    LearningOutcome = "not_found"
	OutcomeUnconfirmed LearningOutcome = "unconfirmed"
)

// LearningRecord is one append-only log line per completed pipeline run. The
// resolver consults these to weight previously-chosen entities higher when a
// slot is ambiguous for the same caller.
type LearningRecord struct {
	ID        string
	Timestamp time.Time
	Caller    string
	Query     string
	Intent    IntentKind
	Slot      string
	Entity    string
	Outcome   LearningOutcome
}
