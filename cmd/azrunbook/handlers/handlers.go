// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/orchestration"
	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/state"
)

// Reconciler interface for testing - matches orchestration.Reconciler.
type Reconciler interface {
	Apply(ctx context.Context) (*provisioning.Result, error)
	Plan(ctx context.Context) ([]provisioning.Step, error)
	Status(ctx context.Context) ([]orchestration.StepStatus, error)
	Reset(ctx context.Context, id provisioning.StepID) ([]provisioning.StepID, error)
	Deallocate(ctx context.Context) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	findConfigFile = config.FindConfigFile

	loadConfigFile = config.Load

	loadConfigUnvalidated = config.LoadWithoutValidation

	newCloud = func(subscriptionID string) (azure.Cloud, error) {
		client, err := azure.NewRealClient(subscriptionID)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	newStore = orchestration.NewStore

	newObserver = func(verbosity int) provisioning.Observer {
		return provisioning.NewStderrObserver(verbosity)
	}

	newReconciler = func(cfg *config.Config, cloud azure.Cloud, store state.Store, opts ...orchestration.Option) Reconciler {
		return orchestration.NewReconciler(cfg, cloud, store, opts...)
	}
)

// resolveConfigPath returns path, or the auto-detected config file when
// path is empty.
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	found, err := findConfigFile()
	if err != nil {
		return "", fmt.Errorf("no config file found: %w\nRun 'azrunbook init' to create one", err)
	}
	return found, nil
}

func loadConfig(path string) (*config.Config, error) {
	path, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// offlineReconciler builds a reconciler for commands that only read or
// edit the recorded state.
func offlineReconciler(ctx context.Context, cfg *config.Config) (Reconciler, error) {
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open state: %w", err)
	}
	return newReconciler(cfg, nil, store, orchestration.WithObserver(newObserver(0))), nil
}

// onlineReconciler builds a reconciler that talks to Azure.
func onlineReconciler(ctx context.Context, cfg *config.Config, opts ...orchestration.Option) (Reconciler, error) {
	if err := cfg.RequireSubscription(); err != nil {
		return nil, err
	}
	cloud, err := newCloud(cfg.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client: %w", err)
	}
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open state: %w", err)
	}
	return newReconciler(cfg, cloud, store, opts...), nil
}
