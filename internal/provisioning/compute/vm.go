package compute

import (
	"fmt"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
)

// CreateVM ensures the virtual machine exists with the configured image,
// size and admin SSH key.
func CreateVM() provisioning.Step {
	return provisioning.NewStep(StepCreateVM, "Ensure virtual machine",
		[]provisioning.StepID{StepNetwork}, createVM)
}

func createVM(ctx *provisioning.Context) error {
	cfg := ctx.Config
	nicID, ok := handleID(ctx, HandleNIC)
	if !ok {
		return fmt.Errorf("no network interface recorded by step %s", StepNetwork)
	}
	image, err := config.ParseImageURN(cfg.VM.Image)
	if err != nil {
		return err
	}
	pubKey, err := cfg.SSHPublicKey()
	if err != nil {
		return err
	}

	vm, err := ctx.Cloud.EnsureVM(ctx, azure.VMCreateOpts{
		ResourceGroup:  cfg.ResourceGroup,
		Location:       cfg.Location,
		Name:           cfg.VM.Name,
		Size:           cfg.VM.Size,
		Tags:           Tags(cfg),
		ImagePublisher: image.Publisher,
		ImageOffer:     image.Offer,
		ImageSKU:       image.SKU,
		ImageVersion:   image.Version,
		AdminUser:      cfg.VM.AdminUser,
		SSHPublicKey:   pubKey,
		OSDiskSKU:      cfg.VM.OSDiskSKU,
		NICID:          nicID,
	})
	if err != nil {
		return provisioning.External("ensure vm", cfg.VM.Name, err)
	}
	recordResource(ctx, StepCreateVM, HandleVM, vm)
	ctx.SetOutput(OutputVMID, vm.ID)
	return nil
}

// StartVM ensures the VM is running. It is a no-op for a running VM and
// brings a deallocated VM back for a resumed run.
func StartVM() provisioning.Step {
	return provisioning.NewStep(StepStartVM, "Ensure virtual machine is running",
		[]provisioning.StepID{StepAttachDisk}, startVM)
}

func startVM(ctx *provisioning.Context) error {
	cfg := ctx.Config
	if err := ctx.Cloud.StartVM(ctx, cfg.ResourceGroup, cfg.VM.Name); err != nil {
		return provisioning.External("start vm", cfg.VM.Name, err)
	}
	ps, err := ctx.Cloud.PowerState(ctx, cfg.ResourceGroup, cfg.VM.Name)
	if err != nil {
		return provisioning.External("query power state", cfg.VM.Name, err)
	}
	if ps != azure.PowerStateRunning {
		return fmt.Errorf("vm %s is %s after start", cfg.VM.Name, ps)
	}
	ctx.SetOutput(OutputPowerState, ps)
	return nil
}

// DeallocateVM releases the VM's compute once the data is in place. When
// deallocate_after is false the step completes without touching the VM.
func DeallocateVM(after provisioning.StepID) provisioning.Step {
	return provisioning.NewStep(StepDeallocateVM, "Deallocate virtual machine",
		[]provisioning.StepID{after}, deallocateVM)
}

func deallocateVM(ctx *provisioning.Context) error {
	cfg := ctx.Config
	if !cfg.DeallocateAfter {
		ctx.Observer.Printf("[%s] deallocate_after is false, leaving %s running", StepDeallocateVM, cfg.VM.Name)
		ctx.SetOutput(OutputSkipped, "true")
		return nil
	}
	if err := Deallocate(ctx); err != nil {
		return err
	}
	ctx.SetOutput(OutputPowerState, azure.PowerStateDeallocated)
	return nil
}

// Deallocate stops and deallocates the VM. The remote channel is closed
// first since the guest goes away.
func Deallocate(ctx *provisioning.Context) error {
	cfg := ctx.Config
	if err := ctx.Close(); err != nil {
		ctx.Observer.Printf("[%s] closing remote session: %v", StepDeallocateVM, err)
	}
	if err := ctx.Cloud.DeallocateVM(ctx, cfg.ResourceGroup, cfg.VM.Name); err != nil {
		return provisioning.External("deallocate vm", cfg.VM.Name, err)
	}
	provisioning.LogChange(ctx.Observer, StepDeallocateVM, "vm power state", cfg.VM.Name, true)
	return nil
}
