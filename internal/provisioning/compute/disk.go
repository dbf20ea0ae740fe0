package compute

import (
	"fmt"
	"strconv"

	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
)

// CreateDisk ensures the empty managed data disk exists.
func CreateDisk() provisioning.Step {
	return provisioning.NewStep(StepCreateDisk, "Ensure managed data disk",
		[]provisioning.StepID{StepResourceGroup}, createDisk)
}

func createDisk(ctx *provisioning.Context) error {
	cfg := ctx.Config
	disk, err := ctx.Cloud.EnsureDisk(ctx, azure.DiskCreateOpts{
		ResourceGroup: cfg.ResourceGroup,
		Location:      cfg.Location,
		Name:          cfg.Disk.Name,
		SizeGB:        cfg.Disk.SizeGB,
		SKU:           cfg.Disk.SKU,
		Tags:          Tags(cfg),
	})
	if err != nil {
		return provisioning.External("ensure disk", cfg.Disk.Name, err)
	}
	recordResource(ctx, StepCreateDisk, HandleDisk, disk)
	ctx.SetOutput(OutputDiskID, disk.ID)
	return nil
}

// AttachDisk attaches the data disk to the VM at the configured LUN unless
// it is attached there already.
func AttachDisk() provisioning.Step {
	return provisioning.NewStep(StepAttachDisk, "Attach data disk to virtual machine",
		[]provisioning.StepID{StepCreateVM, StepCreateDisk}, attachDisk)
}

func attachDisk(ctx *provisioning.Context) error {
	cfg := ctx.Config
	diskID, ok := handleID(ctx, HandleDisk)
	if !ok {
		return fmt.Errorf("no data disk recorded by step %s", StepCreateDisk)
	}
	attached, err := ctx.Cloud.AttachDisk(ctx, cfg.ResourceGroup, cfg.VM.Name, diskID, cfg.Disk.LUN)
	if err != nil {
		return provisioning.External("attach disk", cfg.Disk.Name, err)
	}
	provisioning.LogChange(ctx.Observer, StepAttachDisk, "disk attachment",
		fmt.Sprintf("%s@lun%d", cfg.Disk.Name, cfg.Disk.LUN), attached)
	ctx.SetOutput(OutputLUN, strconv.Itoa(int(cfg.Disk.LUN)))
	return nil
}
