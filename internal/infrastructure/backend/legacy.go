package backend

import (
	"context"
	"time"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// LegacyCLI invokes the imperative nix-env CLI. Output is unstructured; this
// tier exists for hosts where the modern CLI is absent or disabled.
type LegacyCLI struct{}

// NewLegacyCLI returns the legacy CLI tier.
func NewLegacyCLI() *LegacyCLI { return &LegacyCLI{} }

// ID implements ports.Backend.
func (l *LegacyCLI) ID() domain.TierID { return domain.TierLegacy }

// Run implements ports.Backend.
func (l *LegacyCLI) Run(ctx context.Context, plan domain.CommandPlan) (domain.ExecutionResult, error) {
	argv, err := legacyArgv(plan)
	if err != nil {
		return domain.ExecutionResult{}, &domain.UnavailableError{Tier: l.ID(), Reason: err.Error()}
	}

	start := time.Now()
	output, err := runArgv(ctx, l.ID(), argv)
	result := domain.ExecutionResult{
		Tier:       l.ID(),
		Ran:        err == nil,
		Output:     output,
		Duration:   time.Since(start),
		FinishedAt: time.Now(),
	}
	if logical, ok := asLogical(err); ok {
		result.ExitCode = logical.ExitCode
	}
	return result, err
}

var _ ports.Backend = (*LegacyCLI)(nil)
