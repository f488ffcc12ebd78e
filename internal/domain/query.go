package domain

import (
	"context"
	"strings"
	"time"
)

// Normalize lowercases a raw query and collapses runs of whitespace, so
// pattern matching and cache keys see one canonical form.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

// QueryRequest captures a natural-language request originating from a front-end.
// All front-ends (terminal, voice, HTTP) funnel through this one shape.
type QueryRequest struct {
	Context context.Context
	// Text is the raw user input, e.g. "install firefox".
	Text string
	// Execute requests real execution; without it every mutating plan is a dry run.
	Execute bool
	// ConfirmToken is a prior confirmation supplied by the caller. Its presence
	// satisfies the safety gate for moderate/destructive plans.
	ConfirmToken string
	// Caller identifies the requesting front-end session for learning bias.
	Caller string
}

// Status enumerates the user-visible outcomes of a pipeline run.
type Status string

const (
	StatusSuccess                Status = "success"
	StatusUnrecognized           Status = "unrecognized"
	StatusDisambiguationRequired Status = "disambiguation_required"
	StatusNotFound               Status = "not_found"
	StatusConfirmationRequired   Status = "confirmation_required"
	StatusError                  Status = "error"
)

// PipelineResult is the canonical response propagated back to front-ends.
type PipelineResult struct {
	Status          Status
	Query           Query
	Intent          *Intent
	Plan            *CommandPlan
	RenderedCommand string
	ExecutionResult *ExecutionResult
	// Candidates is populated for disambiguation_required.
	Candidates []KnowledgeEntry
	// Suggestions carries the concrete next action for every non-success status.
	Suggestions []string
	// FromCache marks results served from the safe-operation cache.
	FromCache bool
	// Busy marks a result shaped by an in-flight mutation: either a mutating
	// request that was refused, or a cached view served in the meantime.
	Busy bool
	// Annotations is filled by post_execute hooks; it never alters the result.
	Annotations map[string]string
}

// Query is the transient, per-call representation of user input.
type Query struct {
	Raw        string
	Normalized string
	ReceivedAt time.Time
}
