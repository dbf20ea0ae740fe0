package provisioning

import (
	"context"
	"fmt"
	"io"
	"maps"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/guestos"
	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/state"
)

// Connector opens the remote command channel to the VM. It is called at
// most once per Context, by the first step that needs the guest.
type Connector func(ctx *Context) (guestos.Runner, error)

// Context wraps all dependencies and state needed by a step.
type Context struct {
	context.Context
	Config   *config.Config
	State    *state.WorkflowState
	Cloud    azure.Cloud
	Observer Observer
	Metrics  *Metrics
	Connect  Connector

	remote  guestos.Runner
	outputs map[string]string
}

// NewContext creates a new provisioning context logging to stderr.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	st *state.WorkflowState,
	cloud azure.Cloud,
	connect Connector,
) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    st,
		Cloud:    cloud,
		Observer: NewStderrObserver(0),
		Connect:  connect,
	}
}

// Remote returns the command channel to the VM, connecting on first use.
func (c *Context) Remote() (guestos.Runner, error) {
	if c.remote != nil {
		return c.remote, nil
	}
	if c.Connect == nil {
		return nil, fmt.Errorf("no remote connector configured")
	}
	r, err := c.Connect(c)
	if err != nil {
		return nil, err
	}
	c.remote = r
	return r, nil
}

// Close releases the remote channel if one was opened.
func (c *Context) Close() error {
	if c.remote == nil {
		return nil
	}
	r := c.remote
	c.remote = nil
	if closer, ok := r.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// SetOutput records a value produced by the running step. Outputs are
// persisted with the step's completion record.
func (c *Context) SetOutput(key, value string) {
	if c.outputs == nil {
		c.outputs = make(map[string]string)
	}
	c.outputs[key] = value
}

// Output returns an output recorded by a completed step.
func (c *Context) Output(step StepID, key string) (string, bool) {
	rec, ok := c.State.Record(string(step))
	if !ok {
		return "", false
	}
	v, ok := rec.Outputs[key]
	return v, ok
}

func (c *Context) takeOutputs() map[string]string {
	out := maps.Clone(c.outputs)
	c.outputs = nil
	return out
}
