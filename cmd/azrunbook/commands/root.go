// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the azrunbook CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "azrunbook",
		Short:         "Provision an Azure data VM as a resumable workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(Init())
	cmd.AddCommand(Validate())
	cmd.AddCommand(Plan())
	cmd.AddCommand(Apply())
	cmd.AddCommand(Status())
	cmd.AddCommand(Reset())
	cmd.AddCommand(Deallocate())

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

func configFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "config", "c", "", "Path to configuration file (default: azrunbook.yaml)")
}
