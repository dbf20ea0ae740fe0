package azure

import "context"

// MockClient is a mock implementation of Cloud. Unset functions succeed
// with placeholder values.
type MockClient struct {
	EnsureResourceGroupFunc func(ctx context.Context, name, location string, tags map[string]string) (Resource, error)

	EnsureNetworkFunc func(ctx context.Context, opts NetworkOpts) (*NetworkResult, error)
	PublicIPFunc      func(ctx context.Context, resourceGroup, name string) (string, error)

	EnsureVMFunc     func(ctx context.Context, opts VMCreateOpts) (Resource, error)
	StartVMFunc      func(ctx context.Context, resourceGroup, name string) error
	DeallocateVMFunc func(ctx context.Context, resourceGroup, name string) error
	PowerStateFunc   func(ctx context.Context, resourceGroup, name string) (string, error)

	EnsureDiskFunc func(ctx context.Context, opts DiskCreateOpts) (Resource, error)
	AttachDiskFunc func(ctx context.Context, resourceGroup, vmName, diskID string, lun int32) (bool, error)

	StorageAccountKeyFunc func(ctx context.Context, resourceGroup, account string) (string, error)
}

var _ Cloud = (*MockClient)(nil)

// EnsureResourceGroup mocks resource group creation.
func (m *MockClient) EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) (Resource, error) {
	if m.EnsureResourceGroupFunc != nil {
		return m.EnsureResourceGroupFunc(ctx, name, location, tags)
	}
	return Resource{Kind: "resourceGroup", Name: name, ID: "/subscriptions/mock/resourceGroups/" + name, Created: true}, nil
}

// EnsureNetwork mocks network creation.
func (m *MockClient) EnsureNetwork(ctx context.Context, opts NetworkOpts) (*NetworkResult, error) {
	if m.EnsureNetworkFunc != nil {
		return m.EnsureNetworkFunc(ctx, opts)
	}
	return &NetworkResult{
		VNet:            Resource{Kind: "virtualNetwork", Name: opts.VNetName, ID: "mock-vnet"},
		Subnet:          Resource{Kind: "subnet", Name: opts.SubnetName, ID: "mock-subnet"},
		NSG:             Resource{Kind: "networkSecurityGroup", Name: opts.NSGName, ID: "mock-nsg"},
		PublicIP:        Resource{Kind: "publicIPAddress", Name: opts.PublicIPName, ID: "mock-pip"},
		NIC:             Resource{Kind: "networkInterface", Name: opts.NICName, ID: "mock-nic"},
		PublicIPAddress: "127.0.0.1",
	}, nil
}

// PublicIP mocks public IP lookup.
func (m *MockClient) PublicIP(ctx context.Context, resourceGroup, name string) (string, error) {
	if m.PublicIPFunc != nil {
		return m.PublicIPFunc(ctx, resourceGroup, name)
	}
	return "127.0.0.1", nil
}

// EnsureVM mocks VM creation.
func (m *MockClient) EnsureVM(ctx context.Context, opts VMCreateOpts) (Resource, error) {
	if m.EnsureVMFunc != nil {
		return m.EnsureVMFunc(ctx, opts)
	}
	return Resource{Kind: "virtualMachine", Name: opts.Name, ID: "mock-vm", Created: true}, nil
}

// StartVM mocks VM start.
func (m *MockClient) StartVM(ctx context.Context, resourceGroup, name string) error {
	if m.StartVMFunc != nil {
		return m.StartVMFunc(ctx, resourceGroup, name)
	}
	return nil
}

// DeallocateVM mocks VM deallocation.
func (m *MockClient) DeallocateVM(ctx context.Context, resourceGroup, name string) error {
	if m.DeallocateVMFunc != nil {
		return m.DeallocateVMFunc(ctx, resourceGroup, name)
	}
	return nil
}

// PowerState mocks the power state query.
func (m *MockClient) PowerState(ctx context.Context, resourceGroup, name string) (string, error) {
	if m.PowerStateFunc != nil {
		return m.PowerStateFunc(ctx, resourceGroup, name)
	}
	return PowerStateRunning, nil
}

// EnsureDisk mocks disk creation.
func (m *MockClient) EnsureDisk(ctx context.Context, opts DiskCreateOpts) (Resource, error) {
	if m.EnsureDiskFunc != nil {
		return m.EnsureDiskFunc(ctx, opts)
	}
	return Resource{Kind: "disk", Name: opts.Name, ID: "mock-disk", Created: true}, nil
}

// AttachDisk mocks disk attachment.
func (m *MockClient) AttachDisk(ctx context.Context, resourceGroup, vmName, diskID string, lun int32) (bool, error) {
	if m.AttachDiskFunc != nil {
		return m.AttachDiskFunc(ctx, resourceGroup, vmName, diskID, lun)
	}
	return true, nil
}

// StorageAccountKey mocks storage key lookup.
func (m *MockClient) StorageAccountKey(ctx context.Context, resourceGroup, account string) (string, error) {
	if m.StorageAccountKeyFunc != nil {
		return m.StorageAccountKeyFunc(ctx, resourceGroup, account)
	}
	return "bW9jay1rZXk=", nil
}
