package azure

import (
	"context"
	"fmt"
)

// ensureOperation encapsulates get-or-create logic for an ARM resource.
type ensureOperation[T any] struct {
	Kind string
	Name string

	// Get retrieves the resource. A 404 means it does not exist.
	Get func(ctx context.Context) (T, error)

	// Validate optionally checks an existing resource for compatibility.
	Validate func(existing T) error

	// Create creates the resource and waits for it to be provisioned.
	Create func(ctx context.Context) (T, error)
}

// Execute returns the existing resource or creates it. The bool result is
// true when the resource was created.
func (op *ensureOperation[T]) Execute(ctx context.Context) (T, bool, error) {
	existing, err := op.Get(ctx)
	if err == nil {
		if op.Validate != nil {
			if err := op.Validate(existing); err != nil {
				var zero T
				return zero, false, err
			}
		}
		return existing, false, nil
	}
	if !IsNotFound(err) {
		var zero T
		return zero, false, fmt.Errorf("failed to get %s %s: %w", op.Kind, op.Name, err)
	}

	created, err := op.Create(ctx)
	if err != nil {
		var zero T
		return zero, false, fmt.Errorf("failed to create %s %s: %w", op.Kind, op.Name, err)
	}
	return created, true, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func tagPtrs(tags map[string]string) map[string]*string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]*string, len(tags))
	for k, v := range tags {
		out[k] = &v
	}
	return out
}
