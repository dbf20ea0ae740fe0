package azure

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/storage/armstorage"
)

// RealClient implements Cloud using the Azure Resource Manager API.
type RealClient struct {
	subscriptionID string

	groups   *armresources.ResourceGroupsClient
	vnets    *armnetwork.VirtualNetworksClient
	subnets  *armnetwork.SubnetsClient
	nsgs     *armnetwork.SecurityGroupsClient
	pips     *armnetwork.PublicIPAddressesClient
	nics     *armnetwork.InterfacesClient
	vms      *armcompute.VirtualMachinesClient
	disks    *armcompute.DisksClient
	accounts *armstorage.AccountsClient
}

var _ Cloud = (*RealClient)(nil)

// NewRealClient creates a client for the given subscription, authenticated
// through the default Azure credential chain (environment, workload identity,
// managed identity, Azure CLI).
func NewRealClient(subscriptionID string) (*RealClient, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription ID is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain Azure credential: %w", err)
	}

	c := &RealClient{subscriptionID: subscriptionID}
	if c.groups, err = armresources.NewResourceGroupsClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create resource groups client: %w", err)
	}
	if c.vnets, err = armnetwork.NewVirtualNetworksClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create virtual networks client: %w", err)
	}
	if c.subnets, err = armnetwork.NewSubnetsClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create subnets client: %w", err)
	}
	if c.nsgs, err = armnetwork.NewSecurityGroupsClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create security groups client: %w", err)
	}
	if c.pips, err = armnetwork.NewPublicIPAddressesClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create public IP client: %w", err)
	}
	if c.nics, err = armnetwork.NewInterfacesClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create network interfaces client: %w", err)
	}
	if c.vms, err = armcompute.NewVirtualMachinesClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create virtual machines client: %w", err)
	}
	if c.disks, err = armcompute.NewDisksClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create disks client: %w", err)
	}
	if c.accounts, err = armstorage.NewAccountsClient(subscriptionID, cred, nil); err != nil {
		return nil, fmt.Errorf("failed to create storage accounts client: %w", err)
	}
	return c, nil
}

// SubscriptionID returns the subscription the client operates on.
func (c *RealClient) SubscriptionID() string {
	return c.subscriptionID
}
