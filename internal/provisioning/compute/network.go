package compute

import (
	"fmt"

	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
)

// Network ensures the virtual network, subnet, security group, static
// public IP and network interface of the VM.
func Network() provisioning.Step {
	return provisioning.NewStep(StepNetwork, "Ensure virtual network, security group, public IP and NIC",
		[]provisioning.StepID{StepResourceGroup}, ensureNetwork)
}

func ensureNetwork(ctx *provisioning.Context) error {
	cfg := ctx.Config
	res, err := ctx.Cloud.EnsureNetwork(ctx, azure.NetworkOpts{
		ResourceGroup:   cfg.ResourceGroup,
		Location:        cfg.Location,
		Tags:            Tags(cfg),
		VNetName:        cfg.Network.VNetName,
		AddressPrefix:   cfg.Network.AddressPrefix,
		SubnetName:      cfg.Network.SubnetName,
		SubnetPrefix:    cfg.Network.SubnetPrefix,
		NSGName:         cfg.NSGName(),
		SSHSourcePrefix: cfg.Network.SSHSourcePrefix,
		SSHPort:         cfg.VM.SSHPort,
		PublicIPName:    cfg.PublicIPName(),
		NICName:         cfg.NICName(),
	})
	if err != nil {
		return provisioning.External("ensure network", cfg.Network.VNetName, err)
	}

	for _, r := range []struct {
		key string
		res azure.Resource
	}{
		{HandleVNet, res.VNet},
		{HandleSubnet, res.Subnet},
		{HandleNSG, res.NSG},
		{HandlePublicIP, res.PublicIP},
		{HandleNIC, res.NIC},
	} {
		recordResource(ctx, StepNetwork, r.key, r.res)
	}

	if res.PublicIPAddress == "" {
		return fmt.Errorf("public IP %s has no address assigned", res.PublicIP.Name)
	}
	ctx.SetOutput(OutputPublicIP, res.PublicIPAddress)
	ctx.Observer.Printf("[%s] VM will be reachable at %s", StepNetwork, res.PublicIPAddress)
	return nil
}

// PublicIP returns the address of the VM. The address recorded by the
// network step is preferred; the control plane is asked otherwise.
func PublicIP(ctx *provisioning.Context) (string, error) {
	if ip, ok := ctx.Output(StepNetwork, OutputPublicIP); ok && ip != "" {
		return ip, nil
	}
	cfg := ctx.Config
	ip, err := ctx.Cloud.PublicIP(ctx, cfg.ResourceGroup, cfg.PublicIPName())
	if err != nil {
		return "", provisioning.External("get public ip", cfg.PublicIPName(), err)
	}
	if ip == "" {
		return "", fmt.Errorf("public IP %s has no address assigned", cfg.PublicIPName())
	}
	return ip, nil
}
