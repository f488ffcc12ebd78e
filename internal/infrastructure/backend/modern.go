package backend

import (
	"context"
	"time"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// ModernCLI invokes the modern declarative nix CLI. Where the command form
// supports it the output is structured (--json).
type ModernCLI struct{}

// NewModernCLI returns the modern CLI tier.
func NewModernCLI() *ModernCLI { return &ModernCLI{} }

// ID implements ports.Backend.
func (m *ModernCLI) ID() domain.TierID { return domain.TierModern }

// Run implements ports.Backend.
func (m *ModernCLI) Run(ctx context.Context, plan domain.CommandPlan) (domain.ExecutionResult, error) {
	argv, err := modernArgv(plan)
	if err != nil {
		return domain.ExecutionResult{}, &domain.UnavailableError{Tier: m.ID(), Reason: err.Error()}
	}

	start := time.Now()
	output, err := runArgv(ctx, m.ID(), argv)
	result := domain.ExecutionResult{
		Tier:       m.ID(),
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

func asLogical(err error) (*domain.LogicalError, bool) {
	if err == nil {
		return nil, false
	}
	logical, ok := err.(*domain.LogicalError)
	return logical, ok
}

var _ ports.Backend = (*ModernCLI)(nil)
