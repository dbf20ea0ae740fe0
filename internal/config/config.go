package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the complete set of parameters for one provisioning workflow.
// It replaces the shell environment variables the runbook relied on and is
// passed explicitly to the workflow at construction.
type Config struct {
	// Name identifies the workflow. It keys the persisted state and is used
	// as a prefix for derived resource names.
	Name string `yaml:"name"`

	// SubscriptionID is the Azure subscription. Overridden by AZURE_SUBSCRIPTION_ID.
	SubscriptionID string `yaml:"subscription_id,omitempty"`
	ResourceGroup  string `yaml:"resource_group"`
	Location       string `yaml:"location"`

	// Tags are applied to every Azure resource created by the workflow.
	Tags map[string]string `yaml:"tags,omitempty"`

	VM      VMConfig      `yaml:"vm"`
	Network NetworkConfig `yaml:"network,omitempty"`
	Disk    DiskConfig    `yaml:"disk"`
	Swap    SwapConfig    `yaml:"swap,omitempty"`
	Share   ShareConfig   `yaml:"share,omitempty"`
	Copy    CopyConfig    `yaml:"copy,omitempty"`
	State   StateConfig   `yaml:"state,omitempty"`

	// DeallocateAfter stops billing for compute once the data copy finished.
	DeallocateAfter bool `yaml:"deallocate_after,omitempty"`
}

// VMConfig describes the virtual machine.
type VMConfig struct {
	Name string `yaml:"name"`
	// Image is an Azure image URN: Publisher:Offer:Sku:Version.
	Image string `yaml:"image"`
	Size  string `yaml:"size"`

	AdminUser string `yaml:"admin_user"`
	// SSHKeyPath is the private key used for remote execution. The public
	// key is read from SSHKeyPath + ".pub".
	SSHKeyPath string `yaml:"ssh_key_path"`
	// SSHPort must be 22. The VM is created without custom data, so sshd
	// keeps the image's port.
	SSHPort int `yaml:"ssh_port,omitempty"`
	// KnownHostsFile enables host key verification. Without it the key of
	// the freshly created VM is accepted.
	KnownHostsFile string `yaml:"known_hosts_file,omitempty"`

	// OSDiskSKU is the storage account type of the OS disk.
	OSDiskSKU string `yaml:"os_disk_sku,omitempty"`
}

// NetworkConfig describes the network resources created for the VM.
type NetworkConfig struct {
	VNetName      string `yaml:"vnet_name,omitempty"`
	AddressPrefix string `yaml:"address_prefix,omitempty"`
	SubnetName    string `yaml:"subnet_name,omitempty"`
	SubnetPrefix  string `yaml:"subnet_prefix,omitempty"`
	// SSHSourcePrefix restricts inbound SSH. Defaults to "*".
	SSHSourcePrefix string `yaml:"ssh_source_prefix,omitempty"`
}

// DiskConfig describes the managed data disk and how it is laid out.
type DiskConfig struct {
	Name   string `yaml:"name"`
	SizeGB int32  `yaml:"size_gb"`
	SKU    string `yaml:"sku"`
	LUN    int32  `yaml:"lun"`

	Filesystem string `yaml:"filesystem,omitempty"`
	Label      string `yaml:"label,omitempty"`
	MountPoint string `yaml:"mount_point"`
}

// SwapConfig controls swap on the Azure resource (temporary) disk, managed
// by the Linux guest agent through /etc/waagent.conf.
type SwapConfig struct {
	Enabled bool `yaml:"enabled"`
	SizeMB  int  `yaml:"size_mb,omitempty"`
	// AgentConfigPath defaults to /etc/waagent.conf.
	AgentConfigPath string `yaml:"agent_config_path,omitempty"`
	// AgentService is restarted after the agent config changed.
	AgentService string `yaml:"agent_service,omitempty"`
}

// ShareConfig describes the Azure Files share mounted over CIFS.
type ShareConfig struct {
	StorageAccount string `yaml:"storage_account,omitempty"`
	// ResourceGroup of the storage account. Defaults to the workflow group.
	ResourceGroup string `yaml:"resource_group,omitempty"`
	Name          string `yaml:"name,omitempty"`
	// Key is the storage account key. When empty it is fetched from the
	// control plane. Overridden by AZRUNBOOK_SHARE_KEY.
	Key        string `yaml:"key,omitempty"`
	MountPoint string `yaml:"mount_point,omitempty"`
	// Endpoint suffix of the file service.
	Endpoint string `yaml:"endpoint,omitempty"`
}

// Enabled reports whether a share is configured.
func (s ShareConfig) Enabled() bool {
	return s.StorageAccount != "" && s.Name != ""
}

// CopyConfig describes the data copied from the share onto the data disk.
type CopyConfig struct {
	// Source is relative to the share mount point.
	Source string `yaml:"source,omitempty"`
	// Target is relative to the data disk mount point.
	Target string `yaml:"target,omitempty"`
}

// StateConfig selects where the workflow state is persisted.
type StateConfig struct {
	// Backend is "local" (default) or "s3".
	Backend string `yaml:"backend,omitempty"`
	Path    string `yaml:"path,omitempty"`

	Bucket    string `yaml:"bucket,omitempty"`
	Key       string `yaml:"key,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
}

// SSHPublicKey reads the public half of the configured SSH key.
func (c *Config) SSHPublicKey() (string, error) {
	path := c.SSHKeyFile() + ".pub"
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read ssh public key: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SSHPrivateKey reads the configured SSH private key.
func (c *Config) SSHPrivateKey() ([]byte, error) {
	// #nosec G304
	data, err := os.ReadFile(c.SSHKeyFile())
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh private key: %w", err)
	}
	return data, nil
}

// SSHKeyFile is the private key path with a leading ~/ expanded.
func (c *Config) SSHKeyFile() string {
	return expandHome(c.VM.SSHKeyPath)
}

// ShareSourcePath is the absolute copy source on the VM.
func (c *Config) ShareSourcePath() string {
	return filepath.Join(c.Share.MountPoint, c.Copy.Source)
}

// CopyTargetPath is the absolute copy target on the VM.
func (c *Config) CopyTargetPath() string {
	return filepath.Join(c.Disk.MountPoint, c.Copy.Target)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// NSGName is the network security group guarding the VM.
func (c *Config) NSGName() string { return c.VM.Name + "-nsg" }

// PublicIPName is the static public IP of the VM.
func (c *Config) PublicIPName() string { return c.VM.Name + "-ip" }

// NICName is the primary network interface of the VM.
func (c *Config) NICName() string { return c.VM.Name + "-nic" }
