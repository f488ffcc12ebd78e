package domain

import "time"

// TierID identifies one execution mechanism in the fallback chain.
type TierID string

const (
	TierNative TierID = "native"
	TierModern TierID = "modern-cli"
	TierLegacy TierID = "legacy-cli"
	TierManual TierID = "manual"
)

// TierAttempt records one tier invocation, successful or not.
type TierAttempt struct {
	Tier     TierID        `json:"tier"`
	Duration time.Duration `json:"duration"`
	Output   string        `json:"output,omitempty"`
	Err      string        `json:"error,omitempty"`
}

// ExecutionResult wraps the outcome of running one CommandPlan. It is
// append-only once created; post_execute hooks annotate the pipeline result,
// never this value.
type ExecutionResult struct {
	Tier TierID `json:"tier"`
	// Ran is false for dry runs and for the manual-instruction tier.
	Ran      bool          `json:"ran"`
	ExitCode int           `json:"exit_code"`
	Output   string        `json:"output,omitempty"`
	Duration time.Duration `json:"duration"`
	// Attempts lists every tier tried, in order, including the final one.
	Attempts []TierAttempt `json:"attempts,omitempty"`
	// Unexecuted marks manual-fallback results: the rendered command was
	// returned for the user to run by hand.
	Unexecuted bool      `json:"unexecuted"`
	FinishedAt time.Time `json:"finished_at"`
}
