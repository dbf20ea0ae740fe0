package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/azrunbook/cmd/azrunbook/handlers"
)

// Apply returns the command that runs the provisioning workflow.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: auto-detect azrunbook.yaml)
//	--metrics-file: Write Prometheus metrics of the run to this file
//	--verbose, -v: Log verbosity (repeatable)
//
// Environment variables:
//
//	AZURE_SUBSCRIPTION_ID: Target subscription (when not in the config file)
func Apply() *cobra.Command {
	var opts handlers.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run the provisioning workflow",
		Long: `Run every step of the provisioning workflow that is not yet complete.

Completed steps are recorded after each success. When a step fails, fix
the cause and run apply again: it resumes at the failed step.

Examples:
  # Run using azrunbook.yaml in the current directory
  azrunbook apply

  # Run with a specific config and write metrics for node_exporter
  azrunbook apply -c nightly.yaml --metrics-file /var/lib/node_exporter/azrunbook.prom`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), opts)
		},
	}

	configFlag(cmd, &opts.ConfigPath)
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file (textfile collector format)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase log verbosity")

	return cmd
}
