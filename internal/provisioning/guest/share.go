package guest

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/guestos"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
)

// MountShare mounts the Azure Files share over CIFS with a root-only
// credentials file and a persistent fstab entry. Without a configured share
// the step completes without touching the guest.
func MountShare() provisioning.Step {
	return newOptionalStep(StepMountShare, "Mount Azure Files share",
		[]provisioning.StepID{compute.StepStartVM}, shareEnabled, mountShare)
}

func shareEnabled(cfg *config.Config) bool { return cfg.Share.Enabled() }

func copyEnabled(cfg *config.Config) bool {
	return cfg.Share.Enabled() && cfg.Copy.Source != ""
}

func mountShare(ctx *provisioning.Context, r guestos.Runner) error {
	cfg := ctx.Config
	key := cfg.Share.Key
	if key == "" {
		var err error
		key, err = ctx.Cloud.StorageAccountKey(ctx, cfg.Share.ResourceGroup, cfg.Share.StorageAccount)
		if err != nil {
			return provisioning.External("list storage account keys", cfg.Share.StorageAccount, err)
		}
	}

	share := guestos.CIFSShare{
		Account:    cfg.Share.StorageAccount,
		Share:      cfg.Share.Name,
		Key:        key,
		Endpoint:   cfg.Share.Endpoint,
		MountPoint: cfg.Share.MountPoint,
	}
	changed, err := guestos.EnsureShareMounted(ctx, r, share)
	if err != nil {
		return provisioning.External("mount share", share.Source(), err)
	}
	provisioning.LogChange(ctx.Observer, StepMountShare, "cifs mount", share.MountPoint, changed)
	ctx.SetOutput(OutputShare, share.Source())
	ctx.SetOutput(OutputMount, share.MountPoint)
	return nil
}

// CopyData copies the configured share subpath onto the data disk. A marker
// file in the target makes a finished copy a no-op.
func CopyData() provisioning.Step {
	return newOptionalStep(StepCopyData, "Copy data from the share to the data disk",
		[]provisioning.StepID{StepMountDisk, StepMountShare}, copyEnabled, copyData)
}

func copyData(ctx *provisioning.Context, r guestos.Runner) error {
	cfg := ctx.Config
	src, dst := cfg.ShareSourcePath(), cfg.CopyTargetPath()
	ctx.Observer.Printf("[%s] copying %s to %s", StepCopyData, src, dst)
	res, err := guestos.CopyTree(ctx, r, src, dst, func(done, total int) {
		ctx.Observer.Progress(string(StepCopyData), done, total)
	})
	if err != nil {
		return provisioning.External("copy", src, err)
	}
	provisioning.LogChange(ctx.Observer, StepCopyData, "data copy", dst, res.Copied)
	ctx.Observer.Printf("[%s] %s holds %s", StepCopyData, dst, humanize.IBytes(uint64(res.Bytes)))
	ctx.SetOutput(OutputBytes, fmt.Sprintf("%d", res.Bytes))
	return nil
}
