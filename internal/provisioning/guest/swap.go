package guest

import (
	"strconv"

	"github.com/imamik/azrunbook/internal/guestos"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
)

// ConfigureSwap sets resource disk swap in the Linux agent configuration
// and restarts the agent when the file changed.
func ConfigureSwap() provisioning.Step {
	return newStep(StepConfigureSwap, "Configure swap on the resource disk",
		[]provisioning.StepID{compute.StepStartVM}, configureSwap)
}

func configureSwap(ctx *provisioning.Context, r guestos.Runner) error {
	swap := ctx.Config.Swap
	changed, err := guestos.EnsureSwap(ctx, r, swap.AgentConfigPath, swap.AgentService, swap.Enabled, swap.SizeMB)
	if err != nil {
		return provisioning.External("configure swap", swap.AgentConfigPath, err)
	}
	provisioning.LogChange(ctx.Observer, StepConfigureSwap, "agent configuration", swap.AgentConfigPath, changed)
	if swap.Enabled {
		ctx.SetOutput(OutputSwapMB, strconv.Itoa(swap.SizeMB))
	}
	return nil
}
