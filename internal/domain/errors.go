package domain

import (
	"fmt"
	"strings"
)

// UnrecognizedIntentError means no registered pattern matched the query.
// Recoverable: the caller receives suggestions, never a bare failure.
type UnrecognizedIntentError struct {
	Query       string
	Suggestions []string
}

func (e *UnrecognizedIntentError) Error() string {
	return fmt.Sprintf("could not understand %q; try one of: %s", e.Query, strings.Join(e.Suggestions, ", "))
}

// DisambiguationError means a slot resolved to several comparably close
// entries. The pipeline must not silently pick one.
type DisambiguationError struct {
	Slot       string
	Candidates []KnowledgeEntry
}

func (e *DisambiguationError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.Name
	}
	return fmt.Sprintf("%q matches several packages: %s", e.Slot, strings.Join(names, ", "))
}

// NotFoundError means a slot resolved to nothing. Suggestions hold the nearest
// fuzzy matches within the similarity threshold, possibly empty.
type NotFoundError struct {
	Slot        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no package matches %q", e.Slot)
	}
	return fmt.Sprintf("no package matches %q; did you mean: %s", e.Slot, strings.Join(e.Suggestions, ", "))
}

// ConfirmationRequiredError means a mutating plan reached the safety gate
// without a confirmation token and no interactive prompter approved it.
type ConfirmationRequiredError struct {
	Plan CommandPlan
}

func (e *ConfirmationRequiredError) Error() string {
	return fmt.Sprintf("%s is a %s operation; re-run with confirmation to proceed", e.Plan.Operation, e.Plan.Risk)
}

// UnavailableError means a tier's mechanism itself cannot run (binary missing,
// store unreadable). Internal only: it drives fallback to the next tier.
type UnavailableError struct {
	Tier   TierID
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tier %s unavailable: %s: %v", e.Tier, e.Reason, e.Err)
	}
	return fmt.Sprintf("tier %s unavailable: %s", e.Tier, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// LogicalError means a tier ran but the operation failed on its merits.
// Surfaced immediately; falling through tiers would silently retry a request
// already known to be invalid.
type LogicalError struct {
	Tier     TierID
	ExitCode int
	Output   string
}

func (e *LogicalError) Error() string {
	return fmt.Sprintf("tier %s failed (exit %d): %s", e.Tier, e.ExitCode, firstLine(e.Output))
}

// PluginFault is any failure inside a hook. It is contained at the engine
// boundary, logged, and never propagated into the pipeline.
type PluginFault struct {
	Plugin string
	Stage  HookStage
	Err    error
}

func (e *PluginFault) Error() string {
	return fmt.Sprintf("plugin %s failed at %s: %v", e.Plugin, e.Stage, e.Err)
}

func (e *PluginFault) Unwrap() error { return e.Err }

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
