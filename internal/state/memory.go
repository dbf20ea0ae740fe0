package state

import (
	"context"
	"sync"
)

// MemoryStore keeps state in memory. Saved states are deep-copied through
// the codec so callers cannot mutate what was persisted.
type MemoryStore struct {
	mu     sync.Mutex
	data   []byte
	locked bool

	// Saves counts successful Save calls.
	Saves int
	// SaveErr, when set, is returned by Save.
	SaveErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Location implements Store.
func (m *MemoryStore) Location() string {
	return "memory"
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, workflow string) (*WorkflowState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return New(workflow), nil
	}
	return Decode(m.data, m.Location(), workflow)
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s *WorkflowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.data = data
	m.Saves++
	return nil
}

// Lock implements Store.
func (m *MemoryStore) Lock(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return ErrLocked
	}
	m.locked = true
	return nil
}

// Unlock implements Store.
func (m *MemoryStore) Unlock(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = false
	return nil
}

// Raw returns the last saved document.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// SetRaw replaces the stored document, bypassing encoding.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
}
