package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azrunbook/cmd/azrunbook/handlers"
)

// Plan returns the command listing the steps the next apply would run.
func Plan() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the steps the next apply would run",
		Long: `Show the steps the next apply would run.

The plan is computed from the recorded state only. Nothing is read from
or changed in Azure.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), cmd.OutOrStdout(), configPath)
		},
	}
	configFlag(cmd, &configPath)

	return cmd
}
