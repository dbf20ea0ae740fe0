package guest

import (
	"fmt"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/guestos"
	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
)

// Step identifiers.
const (
	StepPartitionDisk provisioning.StepID = "partition-disk"
	StepFormatDisk    provisioning.StepID = "format-disk"
	StepMountDisk     provisioning.StepID = "mount-disk"
	StepConfigureSwap provisioning.StepID = "configure-swap"
	StepMountShare    provisioning.StepID = "mount-share"
	StepCopyData      provisioning.StepID = "copy-data"
)

// Output keys recorded with step completion.
const (
	OutputDevice    = "device"
	OutputPartition = "partition"
	OutputUUID      = "uuid"
	OutputMount     = "mount_point"
	OutputSwapMB    = "swap_size_mb"
	OutputShare     = "share"
	OutputBytes     = "bytes"
	OutputSkipped   = compute.OutputSkipped
)

// newStep builds a guest step guarded by the running-VM precondition.
func newStep(id provisioning.StepID, description string, deps []provisioning.StepID, fn func(*provisioning.Context, guestos.Runner) error) provisioning.Step {
	return provisioning.NewStep(id, description, deps, func(ctx *provisioning.Context) error {
		r, err := ctx.Remote()
		if err != nil {
			return provisioning.External("connect", ctx.Config.VM.Name, err)
		}
		return fn(ctx, r)
	}, provisioning.WithPrecondition(RequireRunning))
}

// newOptionalStep builds a guest step that only touches the VM when enabled
// reports true. Otherwise it completes with the skipped output set and has
// no precondition.
func newOptionalStep(id provisioning.StepID, description string, deps []provisioning.StepID,
	enabled func(*config.Config) bool, fn func(*provisioning.Context, guestos.Runner) error) provisioning.Step {
	guarded := newStep(id, description, deps, fn)
	return provisioning.NewStep(id, description, deps, func(ctx *provisioning.Context) error {
		if !enabled(ctx.Config) {
			ctx.Observer.Printf("[%s] not configured", id)
			ctx.SetOutput(OutputSkipped, "true")
			return nil
		}
		return guarded.Provision(ctx)
	}, provisioning.WithPrecondition(func(ctx *provisioning.Context) error {
		if !enabled(ctx.Config) {
			return nil
		}
		return guarded.Precondition(ctx)
	}))
}

// RequireRunning checks that the VM reports PowerState/running. It only
// reads the instance view.
func RequireRunning(ctx *provisioning.Context) error {
	cfg := ctx.Config
	ps, err := ctx.Cloud.PowerState(ctx, cfg.ResourceGroup, cfg.VM.Name)
	if err != nil {
		return provisioning.External("query power state", cfg.VM.Name, err)
	}
	if ps != azure.PowerStateRunning {
		return fmt.Errorf("vm %s is %s, not running", cfg.VM.Name, ps)
	}
	return nil
}
