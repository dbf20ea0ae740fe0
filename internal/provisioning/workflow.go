package provisioning

import (
	"errors"
	"fmt"
	"time"

	"github.com/imamik/azrunbook/internal/state"
)

// ErrInvalidWorkflow is returned for a malformed step list.
var ErrInvalidWorkflow = errors.New("invalid workflow")

// Workflow is an ordered list of steps. The order is part of its
// correctness: a step may only depend on steps listed before it.
type Workflow struct {
	Name  string
	Steps []Step

	now func() time.Time
}

// Result summarises one Run.
type Result struct {
	Executed []StepID
	Skipped  []StepID
	Duration time.Duration
}

// NewWorkflow creates a workflow from steps in execution order.
func NewWorkflow(name string, steps ...Step) *Workflow {
	return &Workflow{
		Name:  name,
		Steps: steps,
		now:   time.Now,
	}
}

// Step returns the step with the given ID.
func (w *Workflow) Step(id StepID) (Step, bool) {
	for _, s := range w.Steps {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// Validate checks the step list and its consistency with st. A state that
// names another workflow or unknown steps is reported as a
// state.CorruptionError. A completed step whose dependencies are incomplete
// is reported as a PreconditionError.
func (w *Workflow) Validate(st *state.WorkflowState) error {
	seen := make(map[StepID]bool, len(w.Steps))
	for _, s := range w.Steps {
		id := s.ID()
		if id == "" {
			return fmt.Errorf("%w: step with empty id", ErrInvalidWorkflow)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate step %s", ErrInvalidWorkflow, id)
		}
		for _, dep := range s.DependsOn() {
			if !seen[dep] {
				return fmt.Errorf("%w: step %s depends on %s, which is not an earlier step", ErrInvalidWorkflow, id, dep)
			}
		}
		seen[id] = true
	}

	if st == nil {
		return nil
	}
	if st.Workflow != w.Name {
		return &state.CorruptionError{
			Source: "workflow " + w.Name,
			Reason: fmt.Sprintf("state belongs to workflow %q", st.Workflow),
		}
	}
	for _, id := range st.CompletedIDs() {
		if !seen[StepID(id)] {
			return &state.CorruptionError{
				Source: "workflow " + w.Name,
				Reason: fmt.Sprintf("state records unknown step %q as complete", id),
			}
		}
	}
	for _, s := range w.Steps {
		if !st.IsComplete(string(s.ID())) {
			continue
		}
		if missing := incompleteDeps(s, st); len(missing) > 0 {
			return &PreconditionError{
				Step:    s.ID(),
				Missing: missing,
				Reason:  "step is recorded as complete before its dependencies",
			}
		}
	}
	return nil
}

// Plan returns the steps a Run would execute, in order.
func (w *Workflow) Plan(st *state.WorkflowState) []Step {
	var pending []Step
	for _, s := range w.Steps {
		if !st.IsComplete(string(s.ID())) {
			pending = append(pending, s)
		}
	}
	return pending
}

// Run executes every incomplete step in order and persists the state after
// each success. It stops at the first unmet precondition or failure; the
// state then reflects every step that completed before it.
func (w *Workflow) Run(ctx *Context, store state.Store) (*Result, error) {
	start := w.clock()
	res := &Result{}
	err := w.run(ctx, store, res)
	res.Duration = w.clock().Sub(start)
	ctx.Metrics.recordRun(w.Name, err)
	if err != nil {
		return res, err
	}
	ctx.Observer.Printf("Workflow %s completed in %v (%d executed, %d skipped)",
		w.Name, res.Duration.Round(time.Millisecond), len(res.Executed), len(res.Skipped))
	return res, nil
}

func (w *Workflow) run(ctx *Context, store state.Store, res *Result) error {
	if ctx.State == nil {
		return &state.CorruptionError{Source: "workflow " + w.Name, Reason: "no state loaded"}
	}
	if err := w.Validate(ctx.State); err != nil {
		return err
	}

	base := ctx.Observer
	defer func() { ctx.Observer = base }()
	observer := base.WithFields(map[string]string{"workflow": w.Name})
	ctx.Observer = observer

	pending := len(w.Plan(ctx.State))
	ctx.Observer.Printf("Starting workflow %s: %d of %d steps pending", w.Name, pending, len(w.Steps))

	for _, step := range w.Steps {
		id := step.ID()
		ctx.Observer = observer.WithFields(map[string]string{"step": string(id)})
		if ctx.State.IsComplete(string(id)) {
			LogStepSkipped(ctx.Observer, id)
			ctx.Metrics.recordStep(w.Name, id, ResultSkipped, 0)
			res.Skipped = append(res.Skipped, id)
			continue
		}

		if err := w.checkPrecondition(ctx, step); err != nil {
			LogStepFailed(ctx.Observer, id, err)
			ctx.Metrics.recordStep(w.Name, id, ResultFailed, 0)
			return err
		}

		LogStepStart(ctx.Observer, id, step.Description())
		stepStart := w.clock()
		ctx.outputs = nil
		if err := step.Provision(ctx); err != nil {
			took := w.clock().Sub(stepStart)
			ctx.outputs = nil
			LogStepFailed(ctx.Observer, id, err)
			ctx.Metrics.recordStep(w.Name, id, ResultFailed, took)
			return &StepFailure{Step: id, Cause: err}
		}
		took := w.clock().Sub(stepStart)

		ctx.State.MarkComplete(string(id), w.clock(), took, ctx.takeOutputs())
		if err := store.Save(ctx, ctx.State); err != nil {
			return fmt.Errorf("step %s completed but state could not be saved to %s: %w", id, store.Location(), err)
		}

		LogStepComplete(ctx.Observer, id, took)
		ctx.Metrics.recordStep(w.Name, id, ResultExecuted, took)
		res.Executed = append(res.Executed, id)
	}
	return nil
}

func (w *Workflow) checkPrecondition(ctx *Context, step Step) error {
	if missing := incompleteDeps(step, ctx.State); len(missing) > 0 {
		return &PreconditionError{Step: step.ID(), Missing: missing}
	}
	if err := step.Precondition(ctx); err != nil {
		var pe *PreconditionError
		if errors.As(err, &pe) {
			return err
		}
		return &PreconditionError{Step: step.ID(), Reason: err.Error(), Err: err}
	}
	return nil
}

// Reset marks id and every step depending on it, directly or transitively,
// as incomplete. It returns the steps whose completion record was removed.
func (w *Workflow) Reset(st *state.WorkflowState, id StepID) ([]StepID, error) {
	if _, ok := w.Step(id); !ok {
		return nil, fmt.Errorf("unknown step %q", id)
	}

	affected := map[StepID]bool{id: true}
	var reset []StepID
	for _, s := range w.Steps {
		if !affected[s.ID()] {
			for _, dep := range s.DependsOn() {
				if affected[dep] {
					affected[s.ID()] = true
					break
				}
			}
		}
		if affected[s.ID()] && st.Unmark(string(s.ID())) {
			reset = append(reset, s.ID())
		}
	}
	return reset, nil
}

func (w *Workflow) clock() time.Time {
	if w.now == nil {
		return time.Now()
	}
	return w.now()
}

func incompleteDeps(s Step, st *state.WorkflowState) []StepID {
	var missing []StepID
	for _, dep := range s.DependsOn() {
		if !st.IsComplete(string(dep)) {
			missing = append(missing, dep)
		}
	}
	return missing
}
