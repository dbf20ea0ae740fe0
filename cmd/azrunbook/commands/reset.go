package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azrunbook/cmd/azrunbook/handlers"
)

// Reset returns the command that marks a step and its dependents as
// incomplete.
func Reset() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "reset STEP",
		Short: "Mark a step and every step depending on it as not done",
		Long: `Mark a step and every step depending on it as not done, so the next
apply runs them again. Azure resources and guest changes are left as they
are; steps are idempotent and will adopt them.

Example:
  azrunbook reset copy-data`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Reset(cmd.Context(), cmd.OutOrStdout(), configPath, args[0])
		},
	}
	configFlag(cmd, &configPath)

	return cmd
}
