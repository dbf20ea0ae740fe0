package config

// Defaults applied by ApplyDefaults.
const (
	DefaultLocation      = "westeurope"
	DefaultImage         = "Canonical:0001-com-ubuntu-server-jammy:22_04-lts-gen2:latest"
	DefaultVMSize        = "Standard_D4s_v3"
	DefaultAdminUser     = "azureuser"
	DefaultSSHKeyPath    = "~/.ssh/id_rsa"
	DefaultSSHPort       = 22
	DefaultOSDiskSKU     = "Premium_LRS"
	DefaultDiskSKU       = "Premium_LRS"
	DefaultFilesystem    = "ext4"
	DefaultDataMount     = "/datadrive"
	DefaultShareMount    = "/mnt/share"
	DefaultShareEndpoint = "file.core.windows.net"
	DefaultSwapSizeMB    = 2048
	DefaultAgentConfig   = "/etc/waagent.conf"
	DefaultAgentService  = "walinuxagent"
	DefaultAddressPrefix = "10.0.0.0/16"
	DefaultSubnetPrefix  = "10.0.0.0/24"
	DefaultStateBackend  = BackendLocal
	DefaultStateRegion   = "us-east-1"
)

// State backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Environment variables that override file configuration.
const (
	EnvSubscriptionID = "AZURE_SUBSCRIPTION_ID"
	EnvShareKey       = "AZRUNBOOK_SHARE_KEY"
	EnvStateAccessKey = "AZRUNBOOK_STATE_ACCESS_KEY"
	EnvStateSecretKey = "AZRUNBOOK_STATE_SECRET_KEY"
)

// ValidDiskSKUs are the managed disk storage account types accepted for the data disk.
var ValidDiskSKUs = map[string]bool{
	"Standard_LRS":    true,
	"StandardSSD_LRS": true,
	"StandardSSD_ZRS": true,
	"Premium_LRS":     true,
	"Premium_ZRS":     true,
	"PremiumV2_LRS":   true,
	"UltraSSD_LRS":    true,
}

// ValidFilesystems are the filesystems the data disk can be formatted with.
var ValidFilesystems = map[string]bool{
	"ext4": true,
	"xfs":  true,
}

// maxLabelLength is the longest filesystem label mkfs accepts.
var maxLabelLength = map[string]int{
	"ext4": 16,
	"xfs":  12,
}
