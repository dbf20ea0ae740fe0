package provisioning

// StepID identifies a step within a workflow. It keys the completion record
// in the workflow state and must stay stable across releases.
type StepID string

// Step is one idempotent operation of a workflow.
type Step interface {
	// ID returns the stable identifier of the step.
	ID() StepID

	// Description returns a human-readable summary.
	Description() string

	// DependsOn lists steps that must be complete before this one runs.
	// Every dependency must appear earlier in the workflow.
	DependsOn() []StepID

	// Precondition checks external state without mutating it. A non-nil
	// error prevents Provision from running.
	Precondition(ctx *Context) error

	// Provision performs the step. It must be safe to call again after a
	// partial or complete earlier invocation.
	Provision(ctx *Context) error
}

// StepOption configures a step built with NewStep.
type StepOption func(*funcStep)

// WithPrecondition sets the precondition check of a step.
func WithPrecondition(fn func(*Context) error) StepOption {
	return func(s *funcStep) {
		s.precondition = fn
	}
}

// NewStep builds a Step from a provision function.
func NewStep(id StepID, description string, dependsOn []StepID, provision func(*Context) error, opts ...StepOption) Step {
	s := &funcStep{
		id:          id,
		description: description,
		dependsOn:   dependsOn,
		provision:   provision,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type funcStep struct {
	id           StepID
	description  string
	dependsOn    []StepID
	precondition func(*Context) error
	provision    func(*Context) error
}

func (s *funcStep) ID() StepID          { return s.id }
func (s *funcStep) Description() string { return s.description }
func (s *funcStep) DependsOn() []StepID { return s.dependsOn }

func (s *funcStep) Precondition(ctx *Context) error {
	if s.precondition == nil {
		return nil
	}
	return s.precondition(ctx)
}

func (s *funcStep) Provision(ctx *Context) error {
	return s.provision(ctx)
}
