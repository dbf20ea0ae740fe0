package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azrunbook/cmd/azrunbook/handlers"
)

// Validate returns the command that checks a configuration file offline.
func Validate() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without contacting Azure",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Validate(cmd.OutOrStdout(), configPath)
		},
	}
	configFlag(cmd, &configPath)

	return cmd
}
