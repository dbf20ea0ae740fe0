package state

import (
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current on-disk format version.
const SchemaVersion = 1

// StepRecord describes one completed step.
type StepRecord struct {
	CompletedAt time.Time         `yaml:"completed_at"`
	Duration    time.Duration     `yaml:"duration,omitempty"`
	Outputs     map[string]string `yaml:"outputs,omitempty"`
}

// ResourceHandle is an opaque reference to a resource owned by the cloud
// provider. The workflow stores identifiers only.
type ResourceHandle struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// WorkflowState records step completion for one workflow.
type WorkflowState struct {
	Version   int                       `yaml:"version"`
	Workflow  string                    `yaml:"workflow"`
	Lineage   string                    `yaml:"lineage"`
	Completed map[string]StepRecord     `yaml:"completed"`
	Handles   map[string]ResourceHandle `yaml:"handles,omitempty"`
	UpdatedAt time.Time                 `yaml:"updated_at"`
}

// New creates an empty state for the named workflow.
func New(workflow string) *WorkflowState {
	return &WorkflowState{
		Version:   SchemaVersion,
		Workflow:  workflow,
		Lineage:   uuid.NewString(),
		Completed: make(map[string]StepRecord),
		Handles:   make(map[string]ResourceHandle),
	}
}

// IsComplete reports whether the step completed.
func (s *WorkflowState) IsComplete(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Completed[id]
	return ok
}

// MarkComplete records the step as completed at the given time.
func (s *WorkflowState) MarkComplete(id string, at time.Time, took time.Duration, outputs map[string]string) {
	rec := StepRecord{CompletedAt: at.UTC(), Duration: took}
	if len(outputs) > 0 {
		rec.Outputs = maps.Clone(outputs)
	}
	s.Completed[id] = rec
	s.UpdatedAt = at.UTC()
}

// Unmark removes the completion record of a step.
func (s *WorkflowState) Unmark(id string) bool {
	if _, ok := s.Completed[id]; !ok {
		return false
	}
	delete(s.Completed, id)
	s.UpdatedAt = time.Now().UTC()
	return true
}

// Record returns the completion record of a step.
func (s *WorkflowState) Record(id string) (StepRecord, bool) {
	rec, ok := s.Completed[id]
	return rec, ok
}

// CompletedIDs returns the completed step IDs in sorted order.
func (s *WorkflowState) CompletedIDs() []string {
	ids := make([]string, 0, len(s.Completed))
	for id := range s.Completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetHandle stores a resource handle under key.
func (s *WorkflowState) SetHandle(key string, h ResourceHandle) {
	if s.Handles == nil {
		s.Handles = make(map[string]ResourceHandle)
	}
	s.Handles[key] = h
}

// Handle returns the resource handle stored under key.
func (s *WorkflowState) Handle(key string) (ResourceHandle, bool) {
	h, ok := s.Handles[key]
	return h, ok
}
