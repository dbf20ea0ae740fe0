package state

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Encode serialises the state.
func Encode(s *WorkflowState) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses persisted state and checks that it belongs to workflow.
// Any failure is reported as a CorruptionError naming source.
func Decode(data []byte, source, workflow string) (*WorkflowState, error) {
	var s WorkflowState
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &CorruptionError{Source: source, Reason: "unreadable", Err: err}
	}
	if s.Version == 0 && s.Workflow == "" && len(s.Completed) == 0 {
		return nil, &CorruptionError{Source: source, Reason: "empty document"}
	}
	if s.Version != SchemaVersion {
		return nil, &CorruptionError{Source: source, Reason: fmt.Sprintf("unsupported version %d (want %d)", s.Version, SchemaVersion)}
	}
	if s.Workflow != workflow {
		return nil, &CorruptionError{Source: source, Reason: fmt.Sprintf("belongs to workflow %q, not %q", s.Workflow, workflow)}
	}
	for id, rec := range s.Completed {
		if id == "" || rec.CompletedAt.IsZero() {
			return nil, &CorruptionError{Source: source, Reason: fmt.Sprintf("invalid completion record %q", id)}
		}
	}
	if s.Completed == nil {
		s.Completed = make(map[string]StepRecord)
	}
	if s.Handles == nil {
		s.Handles = make(map[string]ResourceHandle)
	}
	return &s, nil
}
