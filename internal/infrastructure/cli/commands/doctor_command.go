// Package commands holds the cobra subcommands behind the root CLI.
package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doeshing/nixwish/internal/app"
	"github.com/doeshing/nixwish/internal/domain"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration, stores and execution tiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := container.Doctor.Run(cmd.Context())
			renderReport(cmd.OutOrStdout(), report)
			if err != nil {
				return err
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
}

func renderReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%-5s] %-18s %s\n", check.Status, check.Name, check.Details)
	}
}
