package compute

import (
	"github.com/imamik/azrunbook/internal/provisioning"
)

// ResourceGroup ensures the workflow's resource group exists in the
// configured location.
func ResourceGroup() provisioning.Step {
	return provisioning.NewStep(StepResourceGroup, "Ensure resource group", nil, ensureResourceGroup)
}

func ensureResourceGroup(ctx *provisioning.Context) error {
	cfg := ctx.Config
	rg, err := ctx.Cloud.EnsureResourceGroup(ctx, cfg.ResourceGroup, cfg.Location, Tags(cfg))
	if err != nil {
		return provisioning.External("ensure resource group", cfg.ResourceGroup, err)
	}
	recordResource(ctx, StepResourceGroup, HandleResourceGroup, rg)
	return nil
}
