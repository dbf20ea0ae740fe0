package compute

import (
	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/state"
)

// Step identifiers.
const (
	StepResourceGroup provisioning.StepID = "resource-group"
	StepNetwork       provisioning.StepID = "network"
	StepCreateVM      provisioning.StepID = "create-vm"
	StepCreateDisk    provisioning.StepID = "create-disk"
	StepAttachDisk    provisioning.StepID = "attach-disk"
	StepStartVM       provisioning.StepID = "start-vm"
	StepDeallocateVM  provisioning.StepID = "deallocate-vm"
)

// Handle keys in the workflow state.
const (
	HandleResourceGroup = "resource_group"
	HandleVNet          = "vnet"
	HandleSubnet        = "subnet"
	HandleNSG           = "nsg"
	HandlePublicIP      = "public_ip"
	HandleNIC           = "nic"
	HandleVM            = "vm"
	HandleDisk          = "disk"
)

// Output keys recorded with step completion.
const (
	OutputPublicIP   = "public_ip"
	OutputVMID       = "vm_id"
	OutputDiskID     = "disk_id"
	OutputLUN        = "lun"
	OutputPowerState = "power_state"
	OutputSkipped    = "skipped"
)

// TagWorkflow marks every resource with the workflow that created it.
const TagWorkflow = "azrunbook-workflow"

// Tags returns the tags applied to every resource of cfg's workflow.
func Tags(cfg *config.Config) map[string]string {
	tags := make(map[string]string, len(cfg.Tags)+1)
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	tags[TagWorkflow] = cfg.Name
	return tags
}

// recordResource stores the handle of res under key and logs the outcome.
func recordResource(ctx *provisioning.Context, step provisioning.StepID, key string, res azure.Resource) {
	ctx.State.SetHandle(key, state.ResourceHandle{Kind: res.Kind, Name: res.Name, ID: res.ID})
	provisioning.LogResource(ctx.Observer, step, res.Kind, res.Name, res.ID, res.Created)
}

// handleID returns the ID recorded under key by an earlier step.
func handleID(ctx *provisioning.Context, key string) (string, bool) {
	h, ok := ctx.State.Handle(key)
	if !ok || h.ID == "" {
		return "", false
	}
	return h.ID, true
}
