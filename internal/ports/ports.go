// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// (Hexagonal) pattern, these interfaces keep the pipeline independent of
// concrete mechanisms like SQLite stores, the Nix CLI or the yaegi sandbox,
// and let tests substitute in-memory fakes for every collaborator.
package ports

import (
	"context"

	"github.com/doeshing/nixwish/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.nixwish/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// IntentClassifier scores a normalized query against registered patterns.
// An empty result means the query was not recognized.
type IntentClassifier interface {
	Classify(normalized string) []domain.Intent
	// Verbs lists the recognized action verbs for suggestion rendering.
	Verbs() []string
}

// SlotExtractor isolates candidate entity strings from a query once the
// trigger span is known.
type SlotExtractor interface {
	Extract(normalized string, trigger domain.SourceSpan) []domain.Slot
}

// KnowledgeStore is the read/write contract over canonical package records.
type KnowledgeStore interface {
	Get(ctx context.Context, name string) (domain.KnowledgeEntry, bool, error)
	ByAlias(ctx context.Context, alias string) (domain.KnowledgeEntry, bool, error)
	All(ctx context.Context) ([]domain.KnowledgeEntry, error)
	// Upsert supersedes any existing entry with the same canonical name.
	Upsert(ctx context.Context, entry domain.KnowledgeEntry) error
}

// KnowledgeResolver maps a raw slot string to canonical entries.
type KnowledgeResolver interface {
	// Resolve returns exactly one resolution, or a domain.NotFoundError /
	// domain.DisambiguationError describing why it could not.
	Resolve(ctx context.Context, slot, caller string) (domain.Resolution, error)
}

// CacheRepository memoizes ExecutionResults for safe operations only.
type CacheRepository interface {
	// Key derives the deterministic cache key for one normalized query and
	// intent kind.
	Key(normalized string, kind domain.IntentKind) string
	Get(key string) (domain.CacheEntry, bool, error)
	Set(entry domain.CacheEntry) error
	Entries() ([]domain.CacheEntry, error)
	Clear() error
}

// LearningStore is the append-only outcome log consulted for resolution bias.
type LearningStore interface {
	Append(record domain.LearningRecord) error
	// Bias returns, per entity name, how often the caller previously chose it
	// for this slot text.
	Bias(caller, slot string) (map[string]int, error)
	Records(limit int) ([]domain.LearningRecord, error)
}

// Backend is one concrete execution tier. Run returns a
// *domain.UnavailableError when the mechanism itself cannot serve the plan and
// a *domain.LogicalError when it ran but the operation failed on its merits;
// the selector's branching depends on exactly this distinction.
type Backend interface {
	ID() domain.TierID
	Run(ctx context.Context, plan domain.CommandPlan) (domain.ExecutionResult, error)
}

// CommandRenderer turns a plan into its user-visible command string. Previews
// and real execution must render identically, so there is exactly one
// implementation shared by both paths.
type CommandRenderer interface {
	Render(plan domain.CommandPlan) string
	// Instruction wraps Render for manual fallback and dry-run display.
	Instruction(plan domain.CommandPlan) string
}

// ExecutionSelector runs a plan through the ordered tier chain.
type ExecutionSelector interface {
	Execute(ctx context.Context, plan domain.CommandPlan) (domain.ExecutionResult, error)
	// MutationInFlight reports whether a mutating plan is currently executing.
	MutationInFlight() bool
}

// HookEngine dispatches plugin hooks at pipeline stages. Implementations must
// contain every hook failure; a fault is logged and the hook skipped.
type HookEngine interface {
	PreIntent(ctx context.Context, query string) string
	PreExecute(ctx context.Context, plan domain.CommandPlan) domain.PreExecuteOutcome
	PostExecute(ctx context.Context, plan domain.CommandPlan, result domain.ExecutionResult) map[string]string
	OnError(ctx context.Context, plan domain.CommandPlan, failure error) []string
	Plugins() []domain.PluginMetadata
}

// ConfirmationPrompter handles interactive confirmations for risky plans.
type ConfirmationPrompter interface {
	Confirm(plan domain.CommandPlan, rendered string) (bool, error)
	Enabled() bool
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
