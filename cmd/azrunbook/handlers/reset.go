package handlers

import (
	"context"
	"fmt"
	"io"

	"github.com/imamik/azrunbook/internal/provisioning"
)

// Reset marks step and its dependents as incomplete.
func Reset(ctx context.Context, out io.Writer, configPath, step string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	r, err := offlineReconciler(ctx, cfg)
	if err != nil {
		return err
	}

	reset, err := r.Reset(ctx, provisioning.StepID(step))
	if err != nil {
		return err
	}
	if len(reset) == 0 {
		fmt.Fprintf(out, "Step %s is not complete. Nothing to reset.\n", step)
		return nil
	}
	fmt.Fprintf(out, "Reset %d step(s):\n", len(reset))
	for _, id := range reset {
		fmt.Fprintf(out, "  - %s\n", id)
	}
	return nil
}
