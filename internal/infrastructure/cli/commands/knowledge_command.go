package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/nixwish/internal/app"
	"github.com/doeshing/nixwish/internal/domain"
)

// NewKnowledgeCommand creates the knowledge command with its subcommands.
func NewKnowledgeCommand(container *app.Container) *cobra.Command {
	knowledgeCmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect or extend the package knowledge store",
	}
	knowledgeCmd.AddCommand(newKnowledgeListCommand(container))
	knowledgeCmd.AddCommand(newKnowledgeAddCommand(container))
	knowledgeCmd.AddCommand(newKnowledgeAliasCommand(container))
	return knowledgeCmd
}

func newKnowledgeListCommand(container *app.Container) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.Knowledge.All(cmd.Context())
			if err != nil {
				return err
			}
			return renderEntries(cmd.OutOrStdout(), entries, category)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only show one category")
	return cmd
}

func newKnowledgeAddCommand(container *app.Container) *cobra.Command {
	var (
		description string
		category    string
		aliases     []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or replace a knowledge entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := domain.KnowledgeEntry{
				Name:        args[0],
				Aliases:     aliases,
				Description: description,
				Category:    category,
			}
			if err := container.Knowledge.Upsert(cmd.Context(), entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s.\n", entry.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "Human-readable description")
	cmd.Flags().StringVar(&category, "category", "", "Category, e.g. editor")
	cmd.Flags().StringSliceVar(&aliases, "alias", nil, "Alias (repeatable)")
	return cmd
}

func newKnowledgeAliasCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "alias <alias> <name>",
		Short: "Point an everyday name at a known package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, name := args[0], args[1]
			entry, ok, err := container.Knowledge.Get(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no knowledge entry named %q", name)
			}
			for _, a := range entry.Aliases {
				if a == alias {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already points at %s.\n", alias, name)
					return nil
				}
			}
			entry.Aliases = append(entry.Aliases, alias)
			if err := container.Knowledge.Upsert(cmd.Context(), entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now points at %s.\n", alias, name)
			return nil
		},
	}
}

func renderEntries(out io.Writer, entries []domain.KnowledgeEntry, category string) error {
	shown := 0
	for _, e := range entries {
		if category != "" && e.Category != category {
			continue
		}
		aliases := ""
		if len(e.Aliases) > 0 {
			aliases = " (" + strings.Join(e.Aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "%-16s %-10s %s%s\n", e.Name, e.Category, e.Description, aliases)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "No knowledge entries.")
	}
	return nil
}
