// Package cli wires the cobra command tree and terminal front-end.
package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/nixwish/internal/app"
	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/infrastructure/cli/commands"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.Pipeline.Prompter = NewPrompter(nil, nil)

	askCmd := newAskCommand(container)

	root := &cobra.Command{
		Use:   "nixwish [request]",
		Short: "nixwish - natural language for your Nix system",
		Long: "nixwish turns plain English like \"install firefox\" into safe, " +
			"previewed Nix operations.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			askCmd.SetArgs(args)
			return askCmd.ExecuteContext(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			container.Close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(askCmd)
	root.AddCommand(commands.NewDoctorCommand(container))
	root.AddCommand(commands.NewHistoryCommand(container))
	root.AddCommand(commands.NewCacheCommand(container))
	root.AddCommand(commands.NewKnowledgeCommand(container))
	root.AddCommand(commands.NewPluginsCommand(container))
	root.AddCommand(commands.NewVersionCommand())
	return root, nil
}

func newAskCommand(container *app.Container) *cobra.Command {
	var (
		execute bool
		yes     bool
		debug   bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ask [natural language]",
		Short: "Turn a natural-language request into a Nix operation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("timeout") {
				if cfg, err := container.ConfigLoader.Load(ctx); err == nil && cfg.Preferences.TimeoutSeconds > 0 {
					timeout = time.Duration(cfg.Preferences.TimeoutSeconds) * time.Second
				}
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			token := ""
			if yes {
				token = "yes"
			}
			result, err := container.Pipeline.Run(domain.QueryRequest{
				Context:      ctx,
				Text:         strings.Join(args, " "),
				Execute:      execute,
				ConfirmToken: token,
				Caller:       "cli",
			})
			if err != nil {
				return err
			}
			RenderResult(cmd.OutOrStdout(), result)
			if debug {
				RenderAttempts(cmd.OutOrStdout(), result)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&execute, "execute", "x", false, "Really execute instead of previewing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm moderate/destructive operations up front")
	cmd.Flags().BoolVar(&debug, "debug", false, "Show the per-tier execution trail")
	cmd.Flags().DurationVar(&timeout, "timeout", domain.DefaultQueryTimeout, "Override request timeout")

	return cmd
}
