package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azrunbook/cmd/azrunbook/handlers"
)

// Status returns the command showing the recorded state of every step.
func Status() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the recorded state of every step",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), cmd.OutOrStdout(), configPath)
		},
	}
	configFlag(cmd, &configPath)

	return cmd
}
