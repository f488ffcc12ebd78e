package commands

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/nixwish/internal/app"
)

const msgNoCachedResults = "No cached results."

// NewCacheCommand creates the cache command with its subcommands.
func NewCacheCommand(container *app.Container) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the result cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(container))
	cacheCmd.AddCommand(newCacheClearCommand(container))
	cacheCmd.AddCommand(newCacheStatsCommand(container))
	return cacheCmd
}

func newCacheListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listCacheEntries(cmd.OutOrStdout(), container)
		},
	}
}

func newCacheClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
			return nil
		},
	}
}

func newCacheStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.Cache.Entries()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entries: %d\n", len(entries))
			if len(entries) > 0 {
				// Entries are sorted newest first.
				fmt.Fprintf(out, "Newest: %s\n", humanize.Time(entries[0].CreatedAt))
				fmt.Fprintf(out, "Oldest: %s\n", humanize.Time(entries[len(entries)-1].CreatedAt))
			}
			return nil
		},
	}
}

func listCacheEntries(out io.Writer, container *app.Container) error {
	entries, err := container.Cache.Entries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, msgNoCachedResults)
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%-14s %-16s %s\n", humanize.Time(e.CreatedAt), e.Intent, e.Rendered)
	}
	return nil
}
