package handlers

import (
	"context"
	"fmt"
	"io"
)

// Plan prints the steps the next apply would run.
func Plan(ctx context.Context, out io.Writer, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	r, err := offlineReconciler(ctx, cfg)
	if err != nil {
		return err
	}

	pending, err := r.Plan(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintf(out, "Workflow %s is complete. Nothing to do.\n", cfg.Name)
		return nil
	}

	fmt.Fprintf(out, "Workflow %s: %d step(s) to run\n\n", cfg.Name, len(pending))
	for _, s := range pending {
		fmt.Fprintf(out, "  + %-16s %s\n", s.ID(), s.Description())
	}
	return nil
}
