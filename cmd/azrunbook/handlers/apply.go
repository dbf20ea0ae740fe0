package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/azrunbook/internal/orchestration"
	"github.com/imamik/azrunbook/internal/provisioning"
)

// ApplyOptions holds the flags of the apply command.
type ApplyOptions struct {
	ConfigPath  string
	MetricsFile string
	Verbosity   int
}

// Apply runs every incomplete step of the workflow.
//
// The state lock is held for the whole run. When a step fails, the error
// names it and the next Apply resumes there. Metrics are written to
// MetricsFile whether or not the run succeeded.
func Apply(ctx context.Context, opts ApplyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	observer := newObserver(opts.Verbosity)
	metrics := provisioning.NewMetrics()
	r, err := onlineReconciler(ctx, cfg,
		orchestration.WithObserver(observer),
		orchestration.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	observer.Printf("Applying workflow %s in %s/%s", cfg.Name, cfg.Location, cfg.ResourceGroup)
	res, runErr := r.Apply(ctx)

	if opts.MetricsFile != "" {
		if err := metrics.WriteToTextfile(opts.MetricsFile); err != nil {
			observer.Printf("Warning: %v", err)
		}
	}

	if runErr != nil {
		if step, ok := provisioning.FailedStep(runErr); ok {
			return fmt.Errorf("%w\n\nFix the cause and run 'azrunbook apply' again to resume at %s", runErr, step)
		}
		return runErr
	}

	if len(res.Executed) == 0 {
		observer.Printf("Nothing to do: all %d steps already complete", len(res.Skipped))
		return nil
	}
	observer.Printf("Workflow %s complete: %d step(s) run in %v", cfg.Name, len(res.Executed), res.Duration.Round(time.Second))
	return nil
}
