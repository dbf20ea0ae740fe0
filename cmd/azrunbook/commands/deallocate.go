package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azrunbook/cmd/azrunbook/handlers"
)

// Deallocate returns the command that stops the VM and releases its compute.
func Deallocate() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deallocate",
		Short: "Stop the VM and release its compute",
		Long: `Stop the VM and release its compute. The disks and the workflow state
are kept. Start the VM again by resetting start-vm and running apply.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deallocate(cmd.Context(), configPath)
		},
	}
	configFlag(cmd, &configPath)

	return cmd
}
