package azure

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
)

const powerStatePrefix = "PowerState/"

// EnsureVM ensures the virtual machine exists. An existing VM of a
// different size is reported as an error rather than resized.
func (c *RealClient) EnsureVM(ctx context.Context, opts VMCreateOpts) (Resource, error) {
	vm, created, err := (&ensureOperation[armcompute.VirtualMachine]{
		Kind: "virtual machine",
		Name: opts.Name,
		Get: func(ctx context.Context) (armcompute.VirtualMachine, error) {
			resp, err := c.vms.Get(ctx, opts.ResourceGroup, opts.Name, nil)
			return resp.VirtualMachine, err
		},
		Validate: func(vm armcompute.VirtualMachine) error {
			if size := vmSize(vm); size != "" && !strings.EqualFold(size, opts.Size) {
				return fmt.Errorf("virtual machine %s exists with size %s (expected %s)", opts.Name, size, opts.Size)
			}
			return nil
		},
		Create: func(ctx context.Context) (armcompute.VirtualMachine, error) {
			poller, err := c.vms.BeginCreateOrUpdate(ctx, opts.ResourceGroup, opts.Name, buildVM(opts), nil)
			if err != nil {
				return armcompute.VirtualMachine{}, err
			}
			resp, err := poller.PollUntilDone(ctx, nil)
			return resp.VirtualMachine, err
		},
	}).Execute(ctx)
	if err != nil {
		return Resource{}, err
	}
	return Resource{Kind: "virtualMachine", Name: opts.Name, ID: derefString(vm.ID), Created: created}, nil
}

// StartVM starts the VM unless it is already running.
func (c *RealClient) StartVM(ctx context.Context, resourceGroup, name string) error {
	state, err := c.PowerState(ctx, resourceGroup, name)
	if err != nil {
		return err
	}
	if state == PowerStateRunning {
		return nil
	}

	poller, err := c.vms.BeginStart(ctx, resourceGroup, name, nil)
	if err != nil {
		return fmt.Errorf("failed to start virtual machine %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to wait for virtual machine %s to start: %w", name, err)
	}
	return nil
}

// DeallocateVM deallocates the VM unless it is already deallocated.
func (c *RealClient) DeallocateVM(ctx context.Context, resourceGroup, name string) error {
	state, err := c.PowerState(ctx, resourceGroup, name)
	if err != nil {
		return err
	}
	if state == PowerStateDeallocated {
		return nil
	}

	poller, err := c.vms.BeginDeallocate(ctx, resourceGroup, name, nil)
	if err != nil {
		return fmt.Errorf("failed to deallocate virtual machine %s: %w", name, err)
	}
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("failed to wait for virtual machine %s to deallocate: %w", name, err)
	}
	return nil
}

// PowerState reads the VM instance view.
func (c *RealClient) PowerState(ctx context.Context, resourceGroup, name string) (string, error) {
	resp, err := c.vms.InstanceView(ctx, resourceGroup, name, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get instance view of %s: %w", name, err)
	}
	return powerState(resp.Statuses), nil
}

// powerState extracts the state from the "PowerState/<state>" status code.
func powerState(statuses []*armcompute.InstanceViewStatus) string {
	for _, s := range statuses {
		if s == nil || s.Code == nil {
			continue
		}
		if state, ok := strings.CutPrefix(*s.Code, powerStatePrefix); ok {
			return state
		}
	}
	return PowerStateUnknown
}

func vmSize(vm armcompute.VirtualMachine) string {
	if vm.Properties == nil || vm.Properties.HardwareProfile == nil || vm.Properties.HardwareProfile.VMSize == nil {
		return ""
	}
	return string(*vm.Properties.HardwareProfile.VMSize)
}

func buildVM(opts VMCreateOpts) armcompute.VirtualMachine {
	return armcompute.VirtualMachine{
		Location: to.Ptr(opts.Location),
		Tags:     tagPtrs(opts.Tags),
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(opts.Size)),
			},
			StorageProfile: &armcompute.StorageProfile{
				ImageReference: &armcompute.ImageReference{
					Publisher: to.Ptr(opts.ImagePublisher),
					Offer:     to.Ptr(opts.ImageOffer),
					SKU:       to.Ptr(opts.ImageSKU),
					Version:   to.Ptr(opts.ImageVersion),
				},
				OSDisk: &armcompute.OSDisk{
					Name:         to.Ptr(opts.Name + "-os"),
					CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
					Caching:      to.Ptr(armcompute.CachingTypesReadWrite),
					ManagedDisk: &armcompute.ManagedDiskParameters{
						StorageAccountType: to.Ptr(armcompute.StorageAccountTypes(opts.OSDiskSKU)),
					},
				},
			},
			OSProfile: &armcompute.OSProfile{
				ComputerName:  to.Ptr(opts.Name),
				AdminUsername: to.Ptr(opts.AdminUser),
				LinuxConfiguration: &armcompute.LinuxConfiguration{
					DisablePasswordAuthentication: to.Ptr(true),
					SSH: &armcompute.SSHConfiguration{
						PublicKeys: []*armcompute.SSHPublicKey{{
							Path:    to.Ptr(fmt.Sprintf("/home/%s/.ssh/authorized_keys", opts.AdminUser)),
							KeyData: to.Ptr(opts.SSHPublicKey),
						}},
					},
				},
			},
			NetworkProfile: &armcompute.NetworkProfile{
				NetworkInterfaces: []*armcompute.NetworkInterfaceReference{{
					ID: to.Ptr(opts.NICID),
					Properties: &armcompute.NetworkInterfaceReferenceProperties{
						Primary: to.Ptr(true),
					},
				}},
			},
		},
	}
}
