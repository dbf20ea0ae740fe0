package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azrunbook/cmd/azrunbook/handlers"
)

// Init returns the command for interactively creating a configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "azrunbook.yaml")
//	--full, -f: Output the configuration with every default filled in
func Init() *cobra.Command {
	var (
		outputPath string
		fullOutput bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a workflow configuration",
		Long: `Interactively create a workflow configuration file.

The wizard asks about:

  - Workflow name, subscription and region
  - VM size and SSH key (generated if missing)
  - Data disk size and type, swap
  - Azure Files share and the directory to copy
  - Where the workflow state is kept

Use --full to write every derived name and default explicitly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, fullOutput)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "azrunbook.yaml", "Output file path")
	cmd.Flags().BoolVarP(&fullOutput, "full", "f", false, "Output full YAML with all defaults")

	return cmd
}
