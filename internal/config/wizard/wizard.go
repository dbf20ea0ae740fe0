package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	Name           string
	SubscriptionID string
	Location       string

	VMSize     string
	SSHKeyPath string

	DiskSizeGB int32
	DiskSKU    string

	EnableSwap bool
	SwapSizeMB int

	// Share is skipped when StorageAccount is empty.
	StorageAccount string
	ShareName      string
	CopySource     string

	DeallocateAfter bool

	StateBackend string
	StateBucket  string
	StateRegion  string
}

// RunWizard runs the interactive configuration wizard. The context is used
// for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runIdentityGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}
	if err := runVMGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("vm: %w", err)
	}
	if err := runDiskGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("data disk: %w", err)
	}
	if err := runShareGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}
	if err := runStateGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	return result, nil
}
