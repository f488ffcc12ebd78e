package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/doeshing/nixwish/internal/domain"
)

// RenderResult prints a pipeline result in a friendly, ASCII-only format.
// Every non-success status comes with a concrete next step; the user is never
// left with a bare failure.
func RenderResult(out io.Writer, result domain.PipelineResult) {
	switch result.Status {
	case domain.StatusSuccess:
		renderSuccess(out, result)
	case domain.StatusUnrecognized:
		fmt.Fprintf(out, "I didn't catch that: %q\n", result.Query.Raw)
		renderSuggestions(out, result.Suggestions)
	case domain.StatusDisambiguationRequired:
		fmt.Fprintln(out, "That matches more than one package:")
		for _, c := range result.Candidates {
			if c.Description != "" {
				fmt.Fprintf(out, "  - %s: %s\n", c.Name, c.Description)
			} else {
				fmt.Fprintf(out, "  - %s\n", c.Name)
			}
		}
		renderSuggestions(out, result.Suggestions)
	case domain.StatusNotFound:
		fmt.Fprintln(out, "I couldn't find that package.")
		if len(result.Suggestions) > 0 {
			fmt.Fprintln(out, "Did you mean:")
			for _, s := range result.Suggestions {
				fmt.Fprintf(out, "  - %s\n", s)
			}
		}
	case domain.StatusConfirmationRequired:
		fmt.Fprintln(out, "This change needs your go-ahead first.")
		if result.RenderedCommand != "" {
			fmt.Fprintf(out, "Command:\n  %s\n", result.RenderedCommand)
		}
		fmt.Fprintln(out, "Re-run with --execute --yes to confirm.")
	default:
		if result.Busy {
			fmt.Fprintln(out, "Another change is already in progress.")
		} else {
			fmt.Fprintln(out, "Something went wrong.")
		}
		renderSuggestions(out, result.Suggestions)
	}
}

func renderSuccess(out io.Writer, result domain.PipelineResult) {
	exec := result.ExecutionResult
	if exec == nil {
		fmt.Fprintln(out, "Done.")
		return
	}

	if result.FromCache {
		fmt.Fprintf(out, "(cached %s)\n", humanize.Time(exec.FinishedAt))
	}

	switch {
	case exec.Unexecuted:
		fmt.Fprint(out, exec.Output)
	case exec.Ran:
		if exec.Output != "" {
			fmt.Fprint(out, exec.Output)
			if exec.Output[len(exec.Output)-1] != '\n' {
				fmt.Fprintln(out)
			}
		}
		fmt.Fprintf(out, "Done via %s tier in %s.\n", exec.Tier, exec.Duration.Round(time.Millisecond))
	default:
		fmt.Fprintln(out, "Done.")
	}

	renderAnnotations(out, result.Annotations)
}

// RenderAttempts prints which tiers were tried and how each fared. Shown on
// --debug runs only.
func RenderAttempts(out io.Writer, result domain.PipelineResult) {
	exec := result.ExecutionResult
	if exec == nil || len(exec.Attempts) == 0 {
		return
	}
	fmt.Fprintln(out, "Tier attempts:")
	for _, a := range exec.Attempts {
		fmt.Fprintf(out, "  %-7s %s", a.Tier, a.Duration.Round(time.Millisecond))
		if a.Err != "" {
			fmt.Fprintf(out, "  %s", a.Err)
		}
		fmt.Fprintln(out)
	}
}

func renderSuggestions(out io.Writer, suggestions []string) {
	for _, s := range suggestions {
		fmt.Fprintf(out, "  try: %s\n", s)
	}
}

func renderAnnotations(out io.Writer, annotations map[string]string) {
	if len(annotations) == 0 {
		return
	}
	keys := make([]string, 0, len(annotations))
	for k := range annotations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "note (%s): %s\n", k, annotations[k])
	}
}
