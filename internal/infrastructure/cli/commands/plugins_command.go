package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doeshing/nixwish/internal/app"
)

// NewPluginsCommand creates the plugins command with its subcommands.
func NewPluginsCommand(container *app.Container) *cobra.Command {
	pluginsCmd := &cobra.Command{
		Use:   "plugins",
		Short: "List, enable or disable plugins",
	}
	pluginsCmd.AddCommand(newPluginsListCommand(container))
	pluginsCmd.AddCommand(newPluginsEnableCommand(container))
	pluginsCmd.AddCommand(newPluginsDisableCommand(container))
	return pluginsCmd
}

func newPluginsListCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered plugins",
		RunE: func(cmd *cobra.Command, args []string) error {
			plugins := container.Hooks.Plugins()
			if len(plugins) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No plugins discovered.")
				return nil
			}
			for _, p := range plugins {
				state := "disabled"
				if p.Enabled {
					state = "enabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-8s %-8s %s\n",
					p.Name, p.Version, state, p.Description)
			}
			return nil
		},
	}
}

func newPluginsEnableCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Enable a plugin for this and future runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Hooks.Enable(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enabled %s. Add it to plugins.enabled in your config to keep it on.\n", args[0])
			return nil
		},
	}
}

func newPluginsDisableCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <name>",
		Short: "Disable a plugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.Hooks.Disable(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s.\n", args[0])
			return nil
		},
	}
}
