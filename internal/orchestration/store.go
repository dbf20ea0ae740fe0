package orchestration

import (
	"context"
	"fmt"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/state"
)

// NewStore returns the state store selected by cfg.State.
func NewStore(ctx context.Context, cfg *config.Config) (state.Store, error) {
	switch cfg.State.Backend {
	case config.BackendLocal, "":
		return state.NewFileStore(cfg.State.Path), nil
	case config.BackendS3:
		return state.NewS3Store(ctx, state.S3Options{
			Bucket:    cfg.State.Bucket,
			Key:       cfg.State.Key,
			Region:    cfg.State.Region,
			Endpoint:  cfg.State.Endpoint,
			AccessKey: cfg.State.AccessKey,
			SecretKey: cfg.State.SecretKey,
		})
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
	}
}
