package provisioning

import (
	"errors"
	"fmt"
	"strings"
)

// PreconditionError reports a step that cannot run because its dependencies
// are incomplete or its own precondition is unmet. No external action was
// taken for the step.
type PreconditionError struct {
	Step    StepID
	Missing []StepID // incomplete dependencies
	Reason  string
	Err     error
}

func (e *PreconditionError) Error() string {
	msg := fmt.Sprintf("precondition of step %s not met", e.Step)
	if len(e.Missing) > 0 {
		ids := make([]string, len(e.Missing))
		for i, id := range e.Missing {
			ids[i] = string(id)
		}
		msg += ": incomplete dependencies " + strings.Join(ids, ", ")
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// StepFailure wraps the error returned by a step's Provision action. The
// step is not marked complete.
type StepFailure struct {
	Step  StepID
	Cause error
}

func (e *StepFailure) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Cause)
}

func (e *StepFailure) Unwrap() error {
	return e.Cause
}

// ExternalCallError reports a failed call to the cloud control plane or the
// guest OS.
type ExternalCallError struct {
	Op       string // e.g. "create vm", "mkfs"
	Resource string
	Err      error
}

func (e *ExternalCallError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *ExternalCallError) Unwrap() error {
	return e.Err
}

// External wraps err as an ExternalCallError. It returns nil for a nil err.
func External(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalCallError{Op: op, Resource: resource, Err: err}
}

// FailedStep returns the step identified by a StepFailure or
// PreconditionError in err's chain.
func FailedStep(err error) (StepID, bool) {
	var sf *StepFailure
	if errors.As(err, &sf) {
		return sf.Step, true
	}
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Step, true
	}
	return "", false
}
