package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/config/wizard"
	"github.com/imamik/azrunbook/internal/util/keygen"
)

// sshKeyBits is the size of keys generated by init.
const sshKeyBits = 4096

// Factory function variables for init - can be replaced in tests.
var (
	fileExists       = wizard.FileExists
	confirmOverwrite = wizard.ConfirmOverwrite
	runWizard        = wizard.RunWizard
	writeConfig      = wizard.WriteConfig
	ensureKeyPair    = keygen.EnsureKeyPair
)

// Init runs the configuration wizard, generates the SSH key if it does not
// exist and writes the configuration file.
func Init(ctx context.Context, outputPath string, fullOutput bool) error {
	if fileExists(outputPath) {
		ok, err := confirmOverwrite(outputPath)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}
	cfg := wizard.BuildConfig(result)

	generated, err := ensureKeyPair(cfg.SSHKeyFile(), sshKeyBits)
	if err != nil {
		return fmt.Errorf("failed to prepare ssh key: %w", err)
	}
	if generated {
		fmt.Printf("Generated SSH key pair at %s\n", cfg.SSHKeyFile())
	}

	if err := writeConfig(cfg, outputPath, fullOutput); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Println()
	fmt.Println("azrunbook - Azure data VM provisioning")
	fmt.Println("======================================")
	fmt.Println()
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()
	fmt.Println("Summary")
	fmt.Println("-------")
	fmt.Printf("  Name:      %s\n", cfg.Name)
	fmt.Printf("  Location:  %s\n", cfg.Location)
	fmt.Printf("  VM size:   %s\n", cfg.VM.Size)
	fmt.Printf("  Data disk: %d GB %s\n", cfg.Disk.SizeGB, cfg.Disk.SKU)
	if cfg.Share.Enabled() {
		fmt.Printf("  Share:     %s/%s\n", cfg.Share.StorageAccount, cfg.Share.Name)
	}
	fmt.Println()
	fmt.Println("Next Steps")
	fmt.Println("----------")
	if cfg.SubscriptionID == "" {
		fmt.Printf("  export %s=<subscription>\n", config.EnvSubscriptionID)
	}
	fmt.Printf("  azrunbook plan -c %s\n", outputPath)
	fmt.Printf("  azrunbook apply -c %s\n", outputPath)
	fmt.Println()
}
