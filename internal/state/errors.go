package state

import (
	"errors"
	"fmt"
)

// ErrLocked is returned when another process holds the state lock.
var ErrLocked = errors.New("state is locked by another process")

// CorruptionError reports persisted state that cannot be read or does not
// belong to the workflow reading it.
type CorruptionError struct {
	Source string // file path or object URL
	Reason string
	Err    error
}

func (e *CorruptionError) Error() string {
	msg := fmt.Sprintf("corrupt workflow state %s: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// IsCorruption reports whether err is or wraps a CorruptionError.
func IsCorruption(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}
