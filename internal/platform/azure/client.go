package azure

import "context"

// Resource identifies a cloud resource touched by an operation.
type Resource struct {
	Kind string
	Name string
	ID   string
	// Created is true when the call created the resource, false when it
	// already existed.
	Created bool
}

// NetworkOpts holds the parameters of the network resources created for a VM.
type NetworkOpts struct {
	ResourceGroup string
	Location      string
	Tags          map[string]string

	VNetName      string
	AddressPrefix string
	SubnetName    string
	SubnetPrefix  string

	NSGName         string
	SSHSourcePrefix string
	SSHPort         int

	PublicIPName string
	NICName      string
}

// NetworkResult holds the resources created by EnsureNetwork.
type NetworkResult struct {
	VNet     Resource
	Subnet   Resource
	NSG      Resource
	PublicIP Resource
	NIC      Resource

	// PublicIPAddress is the allocated static address.
	PublicIPAddress string
}

// VMCreateOpts holds all parameters for creating a virtual machine.
type VMCreateOpts struct {
	ResourceGroup string
	Location      string
	Name          string
	Size          string
	Tags          map[string]string

	ImagePublisher string
	ImageOffer     string
	ImageSKU       string
	ImageVersion   string

	AdminUser    string
	SSHPublicKey string
	OSDiskSKU    string
	NICID        string
}

// DiskCreateOpts holds all parameters for creating an empty managed disk.
type DiskCreateOpts struct {
	ResourceGroup string
	Location      string
	Name          string
	SizeGB        int32
	SKU           string
	Tags          map[string]string
}

// Power states reported by PowerState.
const (
	PowerStateRunning     = "running"
	PowerStateStarting    = "starting"
	PowerStateStopped     = "stopped"
	PowerStateStopping    = "stopping"
	PowerStateDeallocated = "deallocated"
	PowerStateUnknown     = "unknown"
)

// ResourceGroupManager manages resource groups.
type ResourceGroupManager interface {
	EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) (Resource, error)
}

// NetworkManager manages the VM network.
type NetworkManager interface {
	// EnsureNetwork creates the virtual network, subnet, security group with
	// an inbound SSH rule, static public IP and network interface.
	EnsureNetwork(ctx context.Context, opts NetworkOpts) (*NetworkResult, error)
	// PublicIP returns the address of the named public IP resource.
	PublicIP(ctx context.Context, resourceGroup, name string) (string, error)
}

// VMManager manages virtual machines.
type VMManager interface {
	EnsureVM(ctx context.Context, opts VMCreateOpts) (Resource, error)
	StartVM(ctx context.Context, resourceGroup, name string) error
	DeallocateVM(ctx context.Context, resourceGroup, name string) error
	// PowerState returns the state part of the "PowerState/<state>" status
	// code, or PowerStateUnknown when the VM reports none.
	PowerState(ctx context.Context, resourceGroup, name string) (string, error)
}

// DiskManager manages managed data disks.
type DiskManager interface {
	EnsureDisk(ctx context.Context, opts DiskCreateOpts) (Resource, error)
	// AttachDisk attaches the disk to the VM at lun. It reports false when
	// the disk was already attached there.
	AttachDisk(ctx context.Context, resourceGroup, vmName, diskID string, lun int32) (bool, error)
}

// StorageManager reads storage account properties.
type StorageManager interface {
	StorageAccountKey(ctx context.Context, resourceGroup, account string) (string, error)
}

// Cloud is the control-plane client used by the provisioning steps.
type Cloud interface {
	ResourceGroupManager
	NetworkManager
	VMManager
	DiskManager
	StorageManager
}
