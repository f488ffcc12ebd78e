package backend

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/doeshing/nixwish/internal/domain"
)

// runArgv executes argv[0] with the remaining arguments and classifies the
// failure mode for the selector: a missing binary is an availability error, a
// non-zero exit is a logical error (the mechanism ran; the operation failed on
// its merits).
func runArgv(ctx context.Context, tier domain.TierID, argv []string) (string, error) {
	binary, err := exec.LookPath(argv[0])
	if err != nil {
		return "", &domain.UnavailableError{Tier: tier, Reason: argv[0] + " not found", Err: err}
	}

	// One invocation never outlives the per-command bound, even when the
	// request as a whole still has time left.
	ctx, cancel := context.WithTimeout(ctx, domain.DefaultCommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err = cmd.Run()
	output := out.String()
	if err == nil {
		return output, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return output, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, &domain.LogicalError{Tier: tier, ExitCode: exitErr.ExitCode(), Output: output}
	}
	// The process could not start at all.
	return output, &domain.UnavailableError{Tier: tier, Reason: "could not start " + argv[0], Err: err}
}
