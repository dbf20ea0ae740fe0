package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
	"github.com/imamik/azrunbook/internal/state"
)

// Reconciler drives the runbook of one configuration against the cloud and
// its persisted state.
type Reconciler struct {
	config   *config.Config
	cloud    azure.Cloud
	store    state.Store
	connect  provisioning.Connector
	observer provisioning.Observer
	metrics  *provisioning.Metrics
	workflow *provisioning.Workflow
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithObserver sets the observer receiving progress output.
func WithObserver(o provisioning.Observer) Option {
	return func(r *Reconciler) { r.observer = o }
}

// WithMetrics records step and run metrics into m.
func WithMetrics(m *provisioning.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithConnector replaces the SSH connector used for guest steps.
func WithConnector(c provisioning.Connector) Option {
	return func(r *Reconciler) { r.connect = c }
}

// WithWorkflow replaces the runbook workflow.
func WithWorkflow(w *provisioning.Workflow) Option {
	return func(r *Reconciler) { r.workflow = w }
}

// NewReconciler creates a reconciler for cfg.
func NewReconciler(cfg *config.Config, cloud azure.Cloud, store state.Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		config:   cfg,
		cloud:    cloud,
		store:    store,
		connect:  SSHConnector(),
		observer: provisioning.NewStderrObserver(0),
		workflow: NewWorkflow(cfg),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Workflow returns the workflow the reconciler runs.
func (r *Reconciler) Workflow() *provisioning.Workflow {
	return r.workflow
}

// Apply runs every incomplete step. The state lock is held for the whole
// run so two invocations never interleave on the same state.
func (r *Reconciler) Apply(ctx context.Context) (res *provisioning.Result, err error) {
	if err := r.store.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := r.store.Unlock(ctx); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to release state lock: %w", unlockErr))
		}
	}()

	st, err := r.store.Load(ctx, r.config.Name)
	if err != nil {
		return nil, err
	}

	pCtx := r.newContext(ctx, st)
	defer func() {
		if closeErr := pCtx.Close(); closeErr != nil {
			r.observer.Printf("[%s] Failed to close remote session: %v", r.config.Name, closeErr)
		}
	}()

	r.observer.Printf("[%s] Applying workflow (state: %s)", r.config.Name, r.store.Location())
	return r.workflow.Run(pCtx, r.store)
}

// Plan returns the steps the next Apply would execute. It fails when the
// persisted state is inconsistent with the workflow.
func (r *Reconciler) Plan(ctx context.Context) ([]provisioning.Step, error) {
	st, err := r.store.Load(ctx, r.config.Name)
	if err != nil {
		return nil, err
	}
	if err := r.workflow.Validate(st); err != nil {
		return nil, err
	}
	return r.workflow.Plan(st), nil
}

// StepStatus is the persisted status of one step.
type StepStatus struct {
	ID          provisioning.StepID
	Description string
	Complete    bool
	CompletedAt time.Time
	Duration    time.Duration
	Outputs     map[string]string
}

// Status reports the persisted status of every step in workflow order.
func (r *Reconciler) Status(ctx context.Context) ([]StepStatus, error) {
	st, err := r.store.Load(ctx, r.config.Name)
	if err != nil {
		return nil, err
	}
	statuses := make([]StepStatus, 0, len(r.workflow.Steps))
	for _, s := range r.workflow.Steps {
		status := StepStatus{ID: s.ID(), Description: s.Description()}
		if rec, ok := st.Record(string(s.ID())); ok {
			status.Complete = true
			status.CompletedAt = rec.CompletedAt
			status.Duration = rec.Duration
			status.Outputs = rec.Outputs
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// Reset marks id and every step depending on it as incomplete, so the
// next Apply runs them again. It returns the steps that were reset.
func (r *Reconciler) Reset(ctx context.Context, id provisioning.StepID) (_ []provisioning.StepID, err error) {
	if err := r.store.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := r.store.Unlock(ctx); unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to release state lock: %w", unlockErr))
		}
	}()

	st, err := r.store.Load(ctx, r.config.Name)
	if err != nil {
		return nil, err
	}
	reset, err := r.workflow.Reset(st, id)
	if err != nil {
		return nil, err
	}
	if len(reset) == 0 {
		return nil, nil
	}
	if err := r.store.Save(ctx, st); err != nil {
		return nil, err
	}
	r.observer.Printf("[%s] Reset %d step(s): %v", r.config.Name, len(reset), reset)
	return reset, nil
}

// Deallocate stops the VM and releases its compute. It does not touch the
// workflow state.
func (r *Reconciler) Deallocate(ctx context.Context) error {
	st, err := r.store.Load(ctx, r.config.Name)
	if err != nil {
		return err
	}
	return compute.Deallocate(r.newContext(ctx, st))
}

func (r *Reconciler) newContext(ctx context.Context, st *state.WorkflowState) *provisioning.Context {
	pCtx := provisioning.NewContext(ctx, r.config, st, r.cloud, r.connect)
	pCtx.Observer = r.observer
	pCtx.Metrics = r.metrics
	return pCtx
}
