package orchestration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
	"github.com/imamik/azrunbook/internal/state"
)

func TestSteps_Order(t *testing.T) {
	t.Parallel()
	var ids []string
	for _, s := range Steps() {
		ids = append(ids, string(s.ID()))
	}
	assert.Equal(t, []string{
		"resource-group", "network", "create-vm", "create-disk", "attach-disk", "start-vm",
		"partition-disk", "format-disk", "mount-disk", "configure-swap", "mount-share", "copy-data",
		"deallocate-vm",
	}, ids)
}

func TestNewWorkflow_IsValid(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{Name: "nightly"}
	wf := NewWorkflow(cfg)

	assert.Equal(t, "nightly", wf.Name)
	require.NoError(t, wf.Validate(state.New("nightly")))
	assert.Len(t, wf.Plan(state.New("nightly")), len(Steps()))
}

func TestNewStore(t *testing.T) {
	t.Parallel()

	t.Run("local", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "nightly.state.yaml")
		cfg := &config.Config{State: config.StateConfig{Backend: config.BackendLocal, Path: path}}
		store, err := NewStore(context.Background(), cfg)
		require.NoError(t, err)
		assert.IsType(t, &state.FileStore{}, store)
		assert.Contains(t, store.Location(), "nightly.state.yaml")
	})

	t.Run("s3", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{State: config.StateConfig{
			Backend:   config.BackendS3,
			Bucket:    "runbooks",
			Key:       "azrunbook/nightly.state.yaml",
			Region:    "eu-central-1",
			Endpoint:  "https://s3.example.com",
			AccessKey: "AKIAEXAMPLE",
			SecretKey: "secret",
		}}
		store, err := NewStore(context.Background(), cfg)
		require.NoError(t, err)
		assert.IsType(t, &state.S3Store{}, store)
		assert.Contains(t, store.Location(), "runbooks")
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		cfg := &config.Config{State: config.StateConfig{Backend: "consul"}}
		_, err := NewStore(context.Background(), cfg)
		assert.ErrorContains(t, err, `unknown state backend "consul"`)
	})
}

func TestSSHConnector_MissingPrivateKey(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Name: "nightly",
		VM:   config.VMConfig{SSHKeyPath: filepath.Join(t.TempDir(), "missing")},
	}
	cfg.ApplyDefaults()
	st := state.New(cfg.Name)
	st.MarkComplete(string(compute.StepNetwork), time.Now(), 0, map[string]string{compute.OutputPublicIP: "203.0.113.10"})

	ctx := provisioning.NewContext(context.Background(), cfg, st, &azure.MockClient{}, SSHConnector())
	ctx.Observer = provisioning.NewConsoleObserver(logr.Discard())

	_, err := ctx.Remote()
	assert.ErrorContains(t, err, "failed to read ssh private key")
}
