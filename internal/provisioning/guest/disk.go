package guest

import (
	"github.com/imamik/azrunbook/internal/guestos"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
)

// PartitionDisk writes a GPT with one Linux partition to the data disk
// unless it already carries partitions.
func PartitionDisk() provisioning.Step {
	return newStep(StepPartitionDisk, "Partition data disk",
		[]provisioning.StepID{compute.StepStartVM}, partitionDisk)
}

func partitionDisk(ctx *provisioning.Context, r guestos.Runner) error {
	cfg := ctx.Config
	device, err := guestos.ResolveLUN(ctx, r, cfg.Disk.LUN)
	if err != nil {
		return provisioning.External("resolve lun", cfg.Disk.Name, err)
	}
	part, changed, err := guestos.EnsurePartitioned(ctx, r, device, guestos.SinglePartition(cfg.Disk.Label))
	if err != nil {
		return provisioning.External("partition", device, err)
	}
	provisioning.LogChange(ctx.Observer, StepPartitionDisk, "partition table", device, changed)
	ctx.SetOutput(OutputDevice, device)
	ctx.SetOutput(OutputPartition, part)
	return nil
}

// FormatDisk creates the configured filesystem on the data partition
// unless one exists.
func FormatDisk() provisioning.Step {
	return newStep(StepFormatDisk, "Create filesystem on data disk",
		[]provisioning.StepID{StepPartitionDisk}, formatDisk)
}

func formatDisk(ctx *provisioning.Context, r guestos.Runner) error {
	cfg := ctx.Config
	part, err := dataPartition(ctx, r)
	if err != nil {
		return err
	}
	uuid, changed, err := guestos.EnsureFilesystem(ctx, r, part, cfg.Disk.Filesystem, cfg.Disk.Label)
	if err != nil {
		return provisioning.External("mkfs", part, err)
	}
	provisioning.LogChange(ctx.Observer, StepFormatDisk, cfg.Disk.Filesystem+" filesystem", part, changed)
	ctx.SetOutput(OutputPartition, part)
	ctx.SetOutput(OutputUUID, uuid)
	return nil
}

// MountDisk adds a UUID-based fstab entry for the data filesystem and
// mounts it.
func MountDisk() provisioning.Step {
	return newStep(StepMountDisk, "Mount data disk persistently",
		[]provisioning.StepID{StepFormatDisk}, mountDisk)
}

func mountDisk(ctx *provisioning.Context, r guestos.Runner) error {
	cfg := ctx.Config
	uuid, ok := ctx.Output(StepFormatDisk, OutputUUID)
	if !ok || uuid == "" {
		part, err := dataPartition(ctx, r)
		if err != nil {
			return err
		}
		if uuid, err = guestos.FilesystemUUID(ctx, r, part); err != nil {
			return provisioning.External("blkid", part, err)
		}
	}

	mp := cfg.Disk.MountPoint
	changed, err := guestos.EnsureFstabEntry(ctx, r, guestos.DataDiskEntry(uuid, mp, cfg.Disk.Filesystem))
	if err != nil {
		return provisioning.External("update fstab", mp, err)
	}
	provisioning.LogChange(ctx.Observer, StepMountDisk, "fstab entry", mp, changed)

	mounted, err := guestos.EnsureMounted(ctx, r, mp)
	if err != nil {
		return provisioning.External("mount", mp, err)
	}
	provisioning.LogChange(ctx.Observer, StepMountDisk, "mount", mp, mounted)
	ctx.SetOutput(OutputMount, mp)
	return nil
}

// dataPartition returns the partition recorded by the partition step, or
// resolves it again from the LUN.
func dataPartition(ctx *provisioning.Context, r guestos.Runner) (string, error) {
	if part, ok := ctx.Output(StepPartitionDisk, OutputPartition); ok && part != "" {
		return part, nil
	}
	cfg := ctx.Config
	device, err := guestos.ResolveLUN(ctx, r, cfg.Disk.LUN)
	if err != nil {
		return "", provisioning.External("resolve lun", cfg.Disk.Name, err)
	}
	dev, err := guestos.Inspect(ctx, r, device)
	if err != nil {
		return "", provisioning.External("inspect", device, err)
	}
	parts := dev.Partitions()
	if len(parts) == 0 {
		return "", provisioning.External("inspect", device, errNoPartition)
	}
	if parts[0].Path != "" {
		return parts[0].Path, nil
	}
	return guestos.PartitionPath(device, 1), nil
}
