package orchestration

import (
	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
	"github.com/imamik/azrunbook/internal/provisioning/guest"
)

// Steps returns the runbook in execution order.
func Steps() []provisioning.Step {
	return []provisioning.Step{
		compute.ResourceGroup(),
		compute.Network(),
		compute.CreateVM(),
		compute.CreateDisk(),
		compute.AttachDisk(),
		compute.StartVM(),
		guest.PartitionDisk(),
		guest.FormatDisk(),
		guest.MountDisk(),
		guest.ConfigureSwap(),
		guest.MountShare(),
		guest.CopyData(),
		compute.DeallocateVM(guest.StepCopyData),
	}
}

// NewWorkflow returns the runbook workflow of cfg.
func NewWorkflow(cfg *config.Config) *provisioning.Workflow {
	return provisioning.NewWorkflow(cfg.Name, Steps()...)
}
