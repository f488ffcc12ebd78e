package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	tty bool
}

// NewPrompter constructs a prompter referencing stdio. It reports disabled
// when stdin is not a terminal, so piped invocations never hang on a prompt.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	tty := false
	if in == nil {
		in = os.Stdin
		tty = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	} else {
		tty = true
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
		tty: tty,
	}
}

// Enabled indicates whether the prompter can interact with the user.
func (p *Prompter) Enabled() bool {
	return p.tty
}

// Confirm asks the user to approve a mutating plan. Destructive plans demand
// a typed "yes"; moderate plans accept y/N.
func (p *Prompter) Confirm(plan domain.CommandPlan, rendered string) (bool, error) {
	fmt.Fprintf(p.out, "\nThis is a %s operation (%s).\n", plan.Risk, plan.Operation)
	fmt.Fprintf(p.out, "Command:\n  %s\n", rendered)

	if plan.Risk == domain.RiskDestructive {
		return p.askExplicit()
	}
	return p.ask("[y/N]: ")
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, "Continue? ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	fmt.Fprint(p.out, "Type 'yes' to confirm (or anything else to cancel): ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == "yes", nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
