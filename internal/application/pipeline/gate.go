package pipeline

import (
	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// gate decides whether a plan may execute. Dry runs and safe operations pass
// unconditionally. Moderate and destructive plans need either a confirmation
// token carried on the request or an interactive yes from the prompter; in a
// non-interactive session without a token the answer is always a
// ConfirmationRequiredError, never silent execution.
func gate(
	plan domain.CommandPlan,
	rendered string,
	token string,
	prompter ports.ConfirmationPrompter,
) error {
	if plan.Confirmed(token) {
		return nil
	}
	if prompter != nil && prompter.Enabled() {
		ok, err := prompter.Confirm(plan, rendered)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return &domain.ConfirmationRequiredError{Plan: plan}
}
