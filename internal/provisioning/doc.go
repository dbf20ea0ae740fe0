// Package provisioning is the workflow engine that drives a provisioning
// runbook.
//
// The runbook itself is data: an ordered list of [Step] values, each with
// declared dependencies, an optional precondition and an idempotent
// Provision action. The engine runs them in order against a
// [state.WorkflowState], skipping completed steps and persisting progress
// after every step so an interrupted run resumes where it stopped.
//
// # Subpackages
//
//   - compute/: control-plane steps (resource group, network, VM, disk)
//   - guest/: guest OS steps (partition, filesystem, mounts, swap, copy)
//
// # Core Types
//
// Context carries configuration, state, the cloud client, the remote
// command channel and the observer. Workflow validates, plans, runs and
// resets a list of steps. Errors are reported as PreconditionError,
// StepFailure and ExternalCallError.
package provisioning
