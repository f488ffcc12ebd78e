package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/nixwish/internal/app"
	"github.com/doeshing/nixwish/internal/domain"
)

const msgNoHistoryRecorded = "No history recorded yet."

// NewHistoryCommand creates the history command with its subcommands.
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past requests and their outcomes",
	}
	historyCmd.AddCommand(newHistoryListCommand(container))
	historyCmd.AddCommand(newHistoryStatsCommand(container))
	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistory(cmd.OutOrStdout(), container, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", domain.DefaultLearningLimit, "Max entries to show")
	return cmd
}

func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize request outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return historyStats(cmd.OutOrStdout(), container)
		},
	}
}

func listHistory(out io.Writer, container *app.Container, limit int) error {
	if container.Learning == nil {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return nil
	}
	records, err := container.Learning.Records(limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return nil
	}
	for _, r := range records {
		entity := r.Entity
		if entity == "" {
			entity = "-"
		}
		fmt.Fprintf(out, "%-14s %-12s %-16s %-12s %q\n",
			humanize.Time(r.Timestamp), r.Intent, entity, r.Outcome, r.Query)
	}
	return nil
}

func historyStats(out io.Writer, container *app.Container) error {
	if container.Learning == nil {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return nil
	}
	records, err := container.Learning.Records(0)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return nil
	}
	byOutcome := make(map[domain.LearningOutcome]int)
	for _, r := range records {
		byOutcome[r.Outcome]++
	}
	fmt.Fprintf(out, "Total requests: %d\n", len(records))
	for _, outcome := range []domain.LearningOutcome{
		domain.OutcomeSuccess, domain.OutcomePreviewed, domain.OutcomeFailed,
		domain.OutcomeAmbiguous, domain.OutcomeNotFound, domain.OutcomeUnconfirmed,
	} {
		if n := byOutcome[outcome]; n > 0 {
			fmt.Fprintf(out, "  %-12s %d\n", outcome, n)
		}
	}
	return nil
}
