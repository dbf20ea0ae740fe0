package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps state in a local YAML file.
type FileStore struct {
	path string
	now  func() time.Time
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		now:  time.Now,
	}
}

// Location implements Store.
func (f *FileStore) Location() string {
	return f.path
}

// Load implements Store.
func (f *FileStore) Load(_ context.Context, workflow string) (*WorkflowState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(workflow), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return Decode(data, f.path, workflow)
}

// Save implements Store. The file is replaced atomically so a crash never
// leaves a partially written state behind.
func (f *FileStore) Save(_ context.Context, s *WorkflowState) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Lock implements Store using an exclusively created lock file next to the
// state file. A lock left behind by a crashed process is never removed
// automatically, however old it is.
func (f *FileStore) Lock(_ context.Context) error {
	lockPath := f.lockPath()
	if err := os.MkdirAll(filepath.Dir(lockPath), 0700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	// #nosec G304
	lf, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w (lock file: %s). If this is an error, remove the lock file manually", ErrLocked, lockPath)
	}
	if err != nil {
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer func() { _ = lf.Close() }()

	content := fmt.Sprintf("pid=%d\ntime=%s\n", os.Getpid(), f.now().UTC().Format(time.RFC3339))
	if _, err := lf.WriteString(content); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return nil
}

// Unlock implements Store.
func (f *FileStore) Unlock(_ context.Context) error {
	if err := os.Remove(f.lockPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (f *FileStore) lockPath() string {
	return f.path + ".lock"
}
