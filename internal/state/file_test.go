package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissing(t *testing.T) {
	t.Parallel()
	store := NewFileStore(filepath.Join(t.TempDir(), "demo.state.yaml"))

	s, err := store.Load(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Workflow)
	assert.Empty(t, s.Completed)
}

func TestFileStore_SaveLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "demo.state.yaml")
	store := NewFileStore(path)

	s := New("demo")
	s.MarkComplete("network", time.Now(), 0, nil)
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.True(t, got.IsComplete("network"))
	assert.Equal(t, s.Lineage, got.Lineage)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_LoadCorrupt(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "demo.state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: [1\n"), 0600))

	_, err := NewFileStore(path).Load(context.Background(), "demo")
	require.Error(t, err)
	assert.True(t, IsCorruption(err))
}

func TestFileStore_Lock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "demo.state.yaml")
	first := NewFileStore(path)
	second := NewFileStore(path)

	require.NoError(t, first.Lock(ctx))

	err := second.Lock(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLocked))

	require.NoError(t, first.Unlock(ctx))
	require.NoError(t, second.Lock(ctx))
	require.NoError(t, second.Unlock(ctx))

	// Unlock without a lock is a no-op.
	require.NoError(t, second.Unlock(ctx))
}

func TestFileStore_OldLockStillHeld(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "demo.state.yaml")
	require.NoError(t, os.WriteFile(path+".lock", []byte("pid=1\n"), 0600))
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(path+".lock", old, old))

	store := NewFileStore(path)
	err := store.Lock(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	data, err := os.ReadFile(path + ".lock")
	require.NoError(t, err)
	assert.Equal(t, "pid=1\n", string(data), "a long running holder keeps its lock")
}
