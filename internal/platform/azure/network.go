package azure

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
)

const sshRuleName = "allow-ssh"

// EnsureNetwork ensures the network resources of a VM exist. Resources are
// created in dependency order: vnet, security group, subnet, public IP, NIC.
func (c *RealClient) EnsureNetwork(ctx context.Context, opts NetworkOpts) (*NetworkResult, error) {
	result := &NetworkResult{}

	vnet, created, err := (&ensureOperation[armnetwork.VirtualNetwork]{
		Kind: "virtual network",
		Name: opts.VNetName,
		Get: func(ctx context.Context) (armnetwork.VirtualNetwork, error) {
			resp, err := c.vnets.Get(ctx, opts.ResourceGroup, opts.VNetName, nil)
			return resp.VirtualNetwork, err
		},
		Create: func(ctx context.Context) (armnetwork.VirtualNetwork, error) {
			poller, err := c.vnets.BeginCreateOrUpdate(ctx, opts.ResourceGroup, opts.VNetName, armnetwork.VirtualNetwork{
				Location: to.Ptr(opts.Location),
				Tags:     tagPtrs(opts.Tags),
				Properties: &armnetwork.VirtualNetworkPropertiesFormat{
					AddressSpace: &armnetwork.AddressSpace{
						AddressPrefixes: []*string{to.Ptr(opts.AddressPrefix)},
					},
				},
			}, nil)
			if err != nil {
				return armnetwork.VirtualNetwork{}, err
			}
			resp, err := poller.PollUntilDone(ctx, nil)
			return resp.VirtualNetwork, err
		},
	}).Execute(ctx)
	if err != nil {
		return nil, err
	}
	result.VNet = Resource{Kind: "virtualNetwork", Name: opts.VNetName, ID: derefString(vnet.ID), Created: created}

	nsg, created, err := (&ensureOperation[armnetwork.SecurityGroup]{
		Kind: "network security group",
		Name: opts.NSGName,
		Get: func(ctx context.Context) (armnetwork.SecurityGroup, error) {
			resp, err := c.nsgs.Get(ctx, opts.ResourceGroup, opts.NSGName, nil)
			return resp.SecurityGroup, err
		},
		Create: func(ctx context.Context) (armnetwork.SecurityGroup, error) {
			poller, err := c.nsgs.BeginCreateOrUpdate(ctx, opts.ResourceGroup, opts.NSGName, armnetwork.SecurityGroup{
				Location: to.Ptr(opts.Location),
				Tags:     tagPtrs(opts.Tags),
				Properties: &armnetwork.SecurityGroupPropertiesFormat{
					SecurityRules: []*armnetwork.SecurityRule{sshRule(opts.SSHSourcePrefix, opts.SSHPort)},
				},
			}, nil)
			if err != nil {
				return armnetwork.SecurityGroup{}, err
			}
			resp, err := poller.PollUntilDone(ctx, nil)
			return resp.SecurityGroup, err
		},
	}).Execute(ctx)
	if err != nil {
		return nil, err
	}
	result.NSG = Resource{Kind: "networkSecurityGroup", Name: opts.NSGName, ID: derefString(nsg.ID), Created: created}

	subnet, created, err := (&ensureOperation[armnetwork.Subnet]{
		Kind: "subnet",
		Name: opts.SubnetName,
		Get: func(ctx context.Context) (armnetwork.Subnet, error) {
			resp, err := c.subnets.Get(ctx, opts.ResourceGroup, opts.VNetName, opts.SubnetName, nil)
			return resp.Subnet, err
		},
		Validate: func(s armnetwork.Subnet) error {
			if s.Properties != nil && s.Properties.AddressPrefix != nil && *s.Properties.AddressPrefix != opts.SubnetPrefix {
				return fmt.Errorf("subnet %s exists but with different prefix %s (expected %s)",
					opts.SubnetName, *s.Properties.AddressPrefix, opts.SubnetPrefix)
			}
			return nil
		},
		Create: func(ctx context.Context) (armnetwork.Subnet, error) {
			poller, err := c.subnets.BeginCreateOrUpdate(ctx, opts.ResourceGroup, opts.VNetName, opts.SubnetName, armnetwork.Subnet{
				Properties: &armnetwork.SubnetPropertiesFormat{
					AddressPrefix:        to.Ptr(opts.SubnetPrefix),
					NetworkSecurityGroup: &armnetwork.SecurityGroup{ID: nsg.ID},
				},
			}, nil)
			if err != nil {
				return armnetwork.Subnet{}, err
			}
			resp, err := poller.PollUntilDone(ctx, nil)
			return resp.Subnet, err
		},
	}).Execute(ctx)
	if err != nil {
		return nil, err
	}
	result.Subnet = Resource{Kind: "subnet", Name: opts.SubnetName, ID: derefString(subnet.ID), Created: created}

	pip, created, err := (&ensureOperation[armnetwork.PublicIPAddress]{
		Kind: "public IP",
		Name: opts.PublicIPName,
		Get: func(ctx context.Context) (armnetwork.PublicIPAddress, error) {
			resp, err := c.pips.Get(ctx, opts.ResourceGroup, opts.PublicIPName, nil)
			return resp.PublicIPAddress, err
		},
		Create: func(ctx context.Context) (armnetwork.PublicIPAddress, error) {
			poller, err := c.pips.BeginCreateOrUpdate(ctx, opts.ResourceGroup, opts.PublicIPName, armnetwork.PublicIPAddress{
				Location: to.Ptr(opts.Location),
				Tags:     tagPtrs(opts.Tags),
				SKU: &armnetwork.PublicIPAddressSKU{
					Name: to.Ptr(armnetwork.PublicIPAddressSKUNameStandard),
				},
				Properties: &armnetwork.PublicIPAddressPropertiesFormat{
					PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodStatic),
					PublicIPAddressVersion:   to.Ptr(armnetwork.IPVersionIPv4),
				},
			}, nil)
			if err != nil {
				return armnetwork.PublicIPAddress{}, err
			}
			resp, err := poller.PollUntilDone(ctx, nil)
			return resp.PublicIPAddress, err
		},
	}).Execute(ctx)
	if err != nil {
		return nil, err
	}
	result.PublicIP = Resource{Kind: "publicIPAddress", Name: opts.PublicIPName, ID: derefString(pip.ID), Created: created}
	result.PublicIPAddress = publicIPAddress(pip)

	nic, created, err := (&ensureOperation[armnetwork.Interface]{
		Kind: "network interface",
		Name: opts.NICName,
		Get: func(ctx context.Context) (armnetwork.Interface, error) {
			resp, err := c.nics.Get(ctx, opts.ResourceGroup, opts.NICName, nil)
			return resp.Interface, err
		},
		Create: func(ctx context.Context) (armnetwork.Interface, error) {
			poller, err := c.nics.BeginCreateOrUpdate(ctx, opts.ResourceGroup, opts.NICName, armnetwork.Interface{
				Location: to.Ptr(opts.Location),
				Tags:     tagPtrs(opts.Tags),
				Properties: &armnetwork.InterfacePropertiesFormat{
					NetworkSecurityGroup: &armnetwork.SecurityGroup{ID: nsg.ID},
					IPConfigurations: []*armnetwork.InterfaceIPConfiguration{{
						Name: to.Ptr("primary"),
						Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
							Primary:                   to.Ptr(true),
							Subnet:                    &armnetwork.Subnet{ID: subnet.ID},
							PrivateIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodDynamic),
							PublicIPAddress:           &armnetwork.PublicIPAddress{ID: pip.ID},
						},
					}},
				},
			}, nil)
			if err != nil {
				return armnetwork.Interface{}, err
			}
			resp, err := poller.PollUntilDone(ctx, nil)
			return resp.Interface, err
		},
	}).Execute(ctx)
	if err != nil {
		return nil, err
	}
	result.NIC = Resource{Kind: "networkInterface", Name: opts.NICName, ID: derefString(nic.ID), Created: created}

	return result, nil
}

// PublicIP returns the address of the named public IP resource.
func (c *RealClient) PublicIP(ctx context.Context, resourceGroup, name string) (string, error) {
	resp, err := c.pips.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get public IP %s: %w", name, err)
	}
	addr := publicIPAddress(resp.PublicIPAddress)
	if addr == "" {
		return "", fmt.Errorf("public IP %s has no address allocated", name)
	}
	return addr, nil
}

func publicIPAddress(pip armnetwork.PublicIPAddress) string {
	if pip.Properties == nil {
		return ""
	}
	return derefString(pip.Properties.IPAddress)
}

func sshRule(sourcePrefix string, port int) *armnetwork.SecurityRule {
	if sourcePrefix == "" {
		sourcePrefix = "*"
	}
	if port == 0 {
		port = 22
	}
	return &armnetwork.SecurityRule{
		Name: to.Ptr(sshRuleName),
		Properties: &armnetwork.SecurityRulePropertiesFormat{
			Priority:                 to.Ptr[int32](1000),
			Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
			Access:                   to.Ptr(armnetwork.SecurityRuleAccessAllow),
			Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolTCP),
			SourceAddressPrefix:      to.Ptr(sourcePrefix),
			SourcePortRange:          to.Ptr("*"),
			DestinationAddressPrefix: to.Ptr("*"),
			DestinationPortRange:     to.Ptr(strconv.Itoa(port)),
		},
	}
}
