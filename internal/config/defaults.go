package config

import (
	"fmt"
	"os"
	"path"
)

// ApplyDefaults fills unset fields with defaults. Derived names use the
// workflow name as prefix.
func (c *Config) ApplyDefaults() {
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	if c.ResourceGroup == "" && c.Name != "" {
		c.ResourceGroup = c.Name + "-rg"
	}

	c.VM.applyDefaults(c.Name)
	c.Network.applyDefaults(c.VM.Name)
	c.Disk.applyDefaults(c.VM.Name)
	c.Swap.applyDefaults()
	c.Share.applyDefaults(c.ResourceGroup)
	c.State.applyDefaults(c.Name)
}

func (v *VMConfig) applyDefaults(name string) {
	if v.Name == "" && name != "" {
		v.Name = name + "-vm"
	}
	if v.Image == "" {
		v.Image = DefaultImage
	}
	if v.Size == "" {
		v.Size = DefaultVMSize
	}
	if v.AdminUser == "" {
		v.AdminUser = DefaultAdminUser
	}
	if v.SSHKeyPath == "" {
		v.SSHKeyPath = DefaultSSHKeyPath
	}
	if v.SSHPort == 0 {
		v.SSHPort = DefaultSSHPort
	}
	if v.OSDiskSKU == "" {
		v.OSDiskSKU = DefaultOSDiskSKU
	}
}

func (n *NetworkConfig) applyDefaults(vmName string) {
	if n.VNetName == "" && vmName != "" {
		n.VNetName = vmName + "-vnet"
	}
	if n.AddressPrefix == "" {
		n.AddressPrefix = DefaultAddressPrefix
	}
	if n.SubnetName == "" {
		n.SubnetName = "default"
	}
	if n.SubnetPrefix == "" {
		n.SubnetPrefix = DefaultSubnetPrefix
	}
	if n.SSHSourcePrefix == "" {
		n.SSHSourcePrefix = "*"
	}
}

func (d *DiskConfig) applyDefaults(vmName string) {
	if d.Name == "" && vmName != "" {
		d.Name = vmName + "-data"
	}
	if d.SKU == "" {
		d.SKU = DefaultDiskSKU
	}
	if d.Filesystem == "" {
		d.Filesystem = DefaultFilesystem
	}
	if d.Label == "" {
		d.Label = "datadrive"
	}
	if d.MountPoint == "" {
		d.MountPoint = DefaultDataMount
	}
	d.MountPoint = path.Clean(d.MountPoint)
}

func (s *SwapConfig) applyDefaults() {
	if s.SizeMB == 0 {
		s.SizeMB = DefaultSwapSizeMB
	}
	if s.AgentConfigPath == "" {
		s.AgentConfigPath = DefaultAgentConfig
	}
	if s.AgentService == "" {
		s.AgentService = DefaultAgentService
	}
}

func (s *ShareConfig) applyDefaults(resourceGroup string) {
	if s.ResourceGroup == "" {
		s.ResourceGroup = resourceGroup
	}
	if s.MountPoint == "" {
		s.MountPoint = DefaultShareMount
	}
	s.MountPoint = path.Clean(s.MountPoint)
	if s.Endpoint == "" {
		s.Endpoint = DefaultShareEndpoint
	}
}

func (s *StateConfig) applyDefaults(name string) {
	if s.Backend == "" {
		s.Backend = DefaultStateBackend
	}
	switch s.Backend {
	case BackendLocal:
		if s.Path == "" {
			s.Path = fmt.Sprintf(".azrunbook/%s.state.yaml", name)
		}
	case BackendS3:
		if s.Key == "" {
			s.Key = fmt.Sprintf("azrunbook/%s.state.yaml", name)
		}
		if s.Region == "" {
			s.Region = DefaultStateRegion
		}
	}
}

// ApplyEnv overrides secrets and account identifiers from the environment.
func (c *Config) ApplyEnv() {
	applyEnv(c, os.Getenv)
}

func applyEnv(c *Config, getenv func(string) string) {
	if v := getenv(EnvSubscriptionID); v != "" {
		c.SubscriptionID = v
	}
	if v := getenv(EnvShareKey); v != "" {
		c.Share.Key = v
	}
	if v := getenv(EnvStateAccessKey); v != "" {
		c.State.AccessKey = v
	}
	if v := getenv(EnvStateSecretKey); v != "" {
		c.State.SecretKey = v
	}
}
