package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
)

// EnsureDisk ensures an empty managed disk exists.
func (c *RealClient) EnsureDisk(ctx context.Context, opts DiskCreateOpts) (Resource, error) {
	disk, created, err := (&ensureOperation[armcompute.Disk]{
		Kind: "managed disk",
		Name: opts.Name,
		Get: func(ctx context.Context) (armcompute.Disk, error) {
			resp, err := c.disks.Get(ctx, opts.ResourceGroup, opts.Name, nil)
			return resp.Disk, err
		},
		Validate: func(d armcompute.Disk) error {
			if d.Properties != nil && d.Properties.DiskSizeGB != nil && *d.Properties.DiskSizeGB != opts.SizeGB {
				return fmt.Errorf("managed disk %s exists with size %d GiB (expected %d GiB)",
					opts.Name, *d.Properties.DiskSizeGB, opts.SizeGB)
			}
			return nil
		},
		Create: func(ctx context.Context) (armcompute.Disk, error) {
			poller, err := c.disks.BeginCreateOrUpdate(ctx, opts.ResourceGroup, opts.Name, armcompute.Disk{
				Location: to.Ptr(opts.Location),
				Tags:     tagPtrs(opts.Tags),
				SKU: &armcompute.DiskSKU{
					Name: to.Ptr(armcompute.DiskStorageAccountTypes(opts.SKU)),
				},
				Properties: &armcompute.DiskProperties{
					CreationData: &armcompute.CreationData{
						CreateOption: to.Ptr(armcompute.DiskCreateOptionEmpty),
					},
					DiskSizeGB: to.Ptr(opts.SizeGB),
				},
			}, nil)
			if err != nil {
				return armcompute.Disk{}, err
			}
			resp, err := poller.PollUntilDone(ctx, nil)
			return resp.Disk, err
		},
	}).Execute(ctx)
	if err != nil {
		return Resource{}, err
	}
	return Resource{Kind: "disk", Name: opts.Name, ID: derefString(disk.ID), Created: created}, nil
}

// AttachDisk attaches a managed disk to the VM at lun by updating the VM's
// storage profile.
func (c *RealClient) AttachDisk(ctx context.Context, resourceGroup, vmName, diskID string, lun int32) (bool, error) {
	resp, err := c.vms.Get(ctx, resourceGroup, vmName, nil)
	if err != nil {
		return false, fmt.Errorf("failed to get virtual machine %s: %w", vmName, err)
	}
	vm := resp.VirtualMachine
	if vm.Properties == nil || vm.Properties.StorageProfile == nil {
		return false, fmt.Errorf("virtual machine %s has no storage profile", vmName)
	}

	attached, err := findDataDisk(vm.Properties.StorageProfile.DataDisks, diskID, lun)
	if err != nil || attached {
		return false, err
	}

	vm.Properties.StorageProfile.DataDisks = append(vm.Properties.StorageProfile.DataDisks, &armcompute.DataDisk{
		Lun:          to.Ptr(lun),
		CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesAttach),
		ManagedDisk:  &armcompute.ManagedDiskParameters{ID: to.Ptr(diskID)},
	})
	// Instance view and resources are read-only and rejected on update.
	vm.Properties.InstanceView = nil
	vm.Resources = nil

	poller, err := c.vms.BeginCreateOrUpdate(ctx, resourceGroup, vmName, vm, nil)
	if err != nil {
		return false, fmt.Errorf("failed to attach disk to %s: %w", vmName, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return false, fmt.Errorf("failed to wait for disk attach on %s: %w", vmName, err)
	}
	return true, nil
}

// findDataDisk reports whether diskID is attached at lun. A different disk
// on the same lun, or the same disk on another lun, is an error.
func findDataDisk(disks []*armcompute.DataDisk, diskID string, lun int32) (bool, error) {
	for _, d := range disks {
		if d == nil || d.Lun == nil {
			continue
		}
		id := ""
		if d.ManagedDisk != nil {
			id = derefString(d.ManagedDisk.ID)
		}
		sameDisk := strings.EqualFold(id, diskID)
		switch {
		case sameDisk && *d.Lun == lun:
			return true, nil
		case sameDisk:
			return false, fmt.Errorf("disk %s is attached at LUN %d, not %d", diskID, *d.Lun, lun)
		case *d.Lun == lun:
			return false, fmt.Errorf("LUN %d is occupied by disk %s", lun, id)
		}
	}
	return false, nil
}
