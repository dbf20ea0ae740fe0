package handlers

import (
	"fmt"
	"io"

	"github.com/imamik/azrunbook/internal/config"
)

// Validate checks the configuration offline and prints every finding.
func Validate(out io.Writer, configPath string) error {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return err
	}
	cfg, err := loadConfigUnvalidated(path)
	if err != nil {
		return err
	}

	findings := cfg.Check()
	if cfg.SubscriptionID == "" {
		findings = append(findings, config.ValidationError{
			Field:    "subscription_id",
			Message:  fmt.Sprintf("not set; %s must be exported before apply", config.EnvSubscriptionID),
			Severity: config.SeverityWarning,
		})
	}
	if _, err := cfg.SSHPublicKey(); err != nil {
		findings = append(findings, config.ValidationError{
			Field:    "vm.ssh_key_path",
			Message:  err.Error(),
			Severity: config.SeverityError,
		})
	}

	errCount := 0
	for _, f := range findings {
		if f.IsError() {
			errCount++
		}
		fmt.Fprintln(out, f.Error())
	}
	if errCount > 0 {
		return fmt.Errorf("%s: %d error(s)", path, errCount)
	}
	fmt.Fprintf(out, "%s is valid\n", path)
	return nil
}
