package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// Manual is the last tier. It executes nothing: it returns the command the
// user would need to run by hand, with an unexecuted status. It never fails,
// so the fallback chain always terminates with an answer.
type Manual struct{}

// NewManual returns the manual-instruction tier.
func NewManual() *Manual { return &Manual{} }

// ID implements ports.Backend.
func (m *Manual) ID() domain.TierID { return domain.TierManual }

// Run implements ports.Backend.
func (m *Manual) Run(_ context.Context, plan domain.CommandPlan) (domain.ExecutionResult, error) {
	return domain.ExecutionResult{
		Tier:       m.ID(),
		Ran:        false,
		Unexecuted: true,
		Output:     Instruction(plan),
		FinishedAt: time.Now(),
	}, nil
}

// Instruction renders the human-readable fallback text. Dry runs reuse this
// same rendering so previews and manual fallbacks are formatted identically.
func Instruction(plan domain.CommandPlan) string {
	return fmt.Sprintf("run this command yourself:\n  %s\n", CommandLine(plan))
}

var _ ports.Backend = (*Manual)(nil)

// Renderer adapts the package-level rendering helpers to the port the
// pipeline previews through.
type Renderer struct{}

// Render implements ports.CommandRenderer.
func (Renderer) Render(plan domain.CommandPlan) string { return CommandLine(plan) }

// Instruction implements ports.CommandRenderer.
func (Renderer) Instruction(plan domain.CommandPlan) string { return Instruction(plan) }

var _ ports.CommandRenderer = Renderer{}
