package wizard

import (
	"strings"

	"github.com/imamik/azrunbook/internal/config"
)

// BuildConfig creates a Config from the wizard result. Derived names are
// left empty so they follow the workflow name when defaults are applied.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := &config.Config{
		Name:           strings.TrimSpace(result.Name),
		SubscriptionID: strings.TrimSpace(result.SubscriptionID),
		Location:       result.Location,
		VM: config.VMConfig{
			Size:       result.VMSize,
			SSHKeyPath: result.SSHKeyPath,
		},
		Disk: config.DiskConfig{
			SizeGB: result.DiskSizeGB,
			SKU:    result.DiskSKU,
		},
		DeallocateAfter: result.DeallocateAfter,
	}

	if result.EnableSwap {
		cfg.Swap = config.SwapConfig{Enabled: true, SizeMB: result.SwapSizeMB}
	}

	if result.StorageAccount != "" {
		cfg.Share = config.ShareConfig{
			StorageAccount: strings.TrimSpace(result.StorageAccount),
			Name:           strings.TrimSpace(result.ShareName),
		}
		if src := strings.TrimSpace(result.CopySource); src != "" {
			cfg.Copy = config.CopyConfig{Source: src, Target: src}
		}
	}

	if result.StateBackend == StateS3 {
		cfg.State = config.StateConfig{
			Backend: config.BackendS3,
			Bucket:  strings.TrimSpace(result.StateBucket),
			Region:  result.StateRegion,
		}
	}

	return cfg
}
