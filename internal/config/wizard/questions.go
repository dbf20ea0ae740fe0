package wizard

import (
	"context"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/imamik/azrunbook/internal/config"
)

// nameRegex validates workflow names: 1-63 lowercase alphanumeric with hyphens.
var nameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)

var storageAccountRegex = regexp.MustCompile(`^[a-z0-9]{3,24}$`)

func runIdentityGroup(ctx context.Context, result *WizardResult) error {
	result.Location = config.DefaultLocation
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Workflow Name").
				Description("Names the state and prefixes every Azure resource").
				Placeholder("nightly-import").
				Value(&result.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Subscription ID (Optional)").
				Description("Leave empty to use " + config.EnvSubscriptionID).
				Value(&result.SubscriptionID).
				Validate(validateSubscription),
			huh.NewSelect[string]().
				Title("Location").
				Description("Azure region").
				Options(LocationsToOptions()...).
				Value(&result.Location),
		).Title("Workflow"),
	).RunWithContext(ctx)
}

func runVMGroup(ctx context.Context, result *WizardResult) error {
	result.VMSize = config.DefaultVMSize
	result.SSHKeyPath = config.DefaultSSHKeyPath
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("VM Size").
				Options(VMSizesToOptions()...).
				Value(&result.VMSize),
			huh.NewInput().
				Title("SSH Private Key").
				Description("The public key is read from <path>.pub. Generated by init if missing.").
				Value(&result.SSHKeyPath),
		).Title("Virtual Machine"),
	).RunWithContext(ctx)
}

func runDiskGroup(ctx context.Context, result *WizardResult) error {
	sizeInput := "1024"
	swapInput := strconv.Itoa(config.DefaultSwapSizeMB)
	result.DiskSKU = config.DefaultDiskSKU
	result.EnableSwap = true

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Data Disk Size (GB)").
				Value(&sizeInput).
				Validate(validatePositive),
			huh.NewSelect[string]().
				Title("Data Disk Type").
				Options(DiskSKUOptions...).
				Value(&result.DiskSKU),
			huh.NewConfirm().
				Title("Enable swap on the resource disk?").
				Value(&result.EnableSwap),
			huh.NewInput().
				Title("Swap Size (MB)").
				Value(&swapInput).
				Validate(validatePositive),
		).Title("Storage"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	size, _ := strconv.Atoi(strings.TrimSpace(sizeInput))
	result.DiskSizeGB = int32(size) // #nosec G115 -- validated positive
	result.SwapSizeMB, _ = strconv.Atoi(strings.TrimSpace(swapInput))
	return nil
}

func runShareGroup(ctx context.Context, result *WizardResult) error {
	var addShare bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Copy input data from an Azure Files share?").
				Value(&addShare),
		).Title("Input Data"),
	).RunWithContext(ctx)
	if err != nil || !addShare {
		return err
	}

	result.DeallocateAfter = true
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Storage Account").
				Value(&result.StorageAccount).
				Validate(validateStorageAccount),
			huh.NewInput().
				Title("Share Name").
				Value(&result.ShareName).
				Validate(validateRequired),
			huh.NewInput().
				Title("Source Directory").
				Description("Relative to the share root").
				Value(&result.CopySource).
				Validate(validateRelativePath),
			huh.NewConfirm().
				Title("Deallocate the VM after the copy?").
				Value(&result.DeallocateAfter),
		).Title("Azure Files"),
	).RunWithContext(ctx)
}

func runStateGroup(ctx context.Context, result *WizardResult) error {
	result.StateBackend = StateLocal
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("State Backend").
				Description("Where completed steps are recorded").
				Options(StateBackendOptions...).
				Value(&result.StateBackend),
		).Title("State"),
	).RunWithContext(ctx)
	if err != nil || result.StateBackend != StateS3 {
		return err
	}

	result.StateRegion = config.DefaultStateRegion
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bucket").
				Value(&result.StateBucket).
				Validate(validateBucket),
			huh.NewInput().
				Title("Region").
				Value(&result.StateRegion),
		).Title("S3 State"),
	).RunWithContext(ctx)
}

func validateName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errNameRequired
	}
	if !nameRegex.MatchString(s) {
		return errNameInvalid
	}
	return nil
}

func validateSubscription(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return errSubscriptionShape
	}
	return nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errSizeInvalid
	}
	return nil
}

func validateStorageAccount(s string) error {
	if !storageAccountRegex.MatchString(strings.TrimSpace(s)) {
		return errAccountInvalid
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errNameRequired
	}
	return nil
}

func validateRelativePath(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if path.IsAbs(s) || strings.HasPrefix(path.Clean(s), "..") {
		return errRelativePath
	}
	return nil
}

func validateBucket(s string) error {
	if strings.TrimSpace(s) == "" {
		return errBucketRequired
	}
	return nil
}
