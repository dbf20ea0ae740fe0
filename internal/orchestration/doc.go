// Package orchestration assembles the provisioning runbook and drives it.
//
// # Workflow
//
// The runbook executes the following steps in order:
//  1. resource-group, network, create-vm, create-disk, attach-disk, start-vm
//  2. partition-disk, format-disk, mount-disk
//  3. configure-swap, mount-share, copy-data
//  4. deallocate-vm
//
// # Usage
//
// The Reconciler is the main entry point:
//
//	reconciler := orchestration.NewReconciler(cfg, cloud, store)
//	result, err := reconciler.Apply(ctx)
//
// Apply is idempotent. It holds the state lock for the whole run, skips
// steps recorded as complete and persists the state after every step, so a
// failed run is resumed by running Apply again.
package orchestration
