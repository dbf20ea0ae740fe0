package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/azrunbook/internal/config"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig writes the config to a YAML file with a descriptive header.
// If fullOutput is true, defaults are applied first so every derived name
// is visible. Secrets are never written.
func WriteConfig(cfg *config.Config, outputPath string, fullOutput bool) error {
	out := *cfg
	if fullOutput {
		out.ApplyDefaults()
	}
	out.Share.Key = ""
	out.State.AccessKey = ""
	out.State.SecretKey = ""

	yamlBytes, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(cfg, outputPath, fullOutput))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// generateHeader creates the YAML file header comment.
func generateHeader(cfg *config.Config, outputPath string, fullOutput bool) string {
	mode := "minimal"
	if fullOutput {
		mode = "full"
	}

	env := []string{"#   az login (or AZURE_CLIENT_ID / AZURE_TENANT_ID / AZURE_CLIENT_SECRET)"}
	if cfg.SubscriptionID == "" {
		env = append(env, fmt.Sprintf("#   %s - target subscription", config.EnvSubscriptionID))
	}
	if cfg.State.Backend == config.BackendS3 {
		env = append(env, fmt.Sprintf("#   %s / %s - state bucket credentials", config.EnvStateAccessKey, config.EnvStateSecretKey))
	}

	return fmt.Sprintf(`# azrunbook workflow configuration
# Generated by: azrunbook init
# Generated at: %s
# Output mode: %s
#
# Credentials:
%s
#
# Usage:
#   azrunbook plan -c %s
#   azrunbook apply -c %s
`, time.Now().Format(time.RFC3339), mode, strings.Join(env, "\n"), outputPath, outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

func defaultConfirmOverwrite(path string) (bool, error) {
	fmt.Printf("\nFile already exists: %s\n", path)
	fmt.Print("Overwrite? (y/n): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
