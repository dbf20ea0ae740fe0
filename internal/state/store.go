package state

import "context"

// Store loads and persists workflow state.
type Store interface {
	// Load returns the persisted state of workflow, or a new empty state
	// when nothing was persisted yet.
	Load(ctx context.Context, workflow string) (*WorkflowState, error)

	// Save persists the state, replacing any previous version.
	Save(ctx context.Context, s *WorkflowState) error

	// Lock acquires exclusive access to the state.
	Lock(ctx context.Context) error

	// Unlock releases the lock.
	Unlock(ctx context.Context) error

	// Location describes where the state lives, for messages.
	Location() string
}
