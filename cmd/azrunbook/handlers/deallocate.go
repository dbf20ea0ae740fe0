package handlers

import (
	"context"

	"github.com/imamik/azrunbook/internal/orchestration"
)

// Deallocate stops the VM and releases its compute.
func Deallocate(ctx context.Context, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	observer := newObserver(0)
	r, err := onlineReconciler(ctx, cfg, orchestration.WithObserver(observer))
	if err != nil {
		return err
	}
	if err := r.Deallocate(ctx); err != nil {
		return err
	}
	observer.Printf("VM %s deallocated", cfg.VM.Name)
	return nil
}
