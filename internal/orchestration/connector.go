package orchestration

import (
	"github.com/imamik/azrunbook/internal/guestos"
	"github.com/imamik/azrunbook/internal/platform/ssh"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
)

// SSHConnector opens an SSH session to the VM's public IP as the admin
// user. Connection attempts are retried while the VM boots.
func SSHConnector() provisioning.Connector {
	return func(ctx *provisioning.Context) (guestos.Runner, error) {
		cfg := ctx.Config
		host, err := compute.PublicIP(ctx)
		if err != nil {
			return nil, err
		}
		key, err := cfg.SSHPrivateKey()
		if err != nil {
			return nil, err
		}

		ctx.Observer.Printf("Connecting to %s@%s:%d...", cfg.VM.AdminUser, host, cfg.VM.SSHPort)
		return ssh.NewClient(&ssh.Config{
			Host:           host,
			Port:           cfg.VM.SSHPort,
			User:           cfg.VM.AdminUser,
			PrivateKey:     key,
			KnownHostsFile: cfg.VM.KnownHostsFile,
			OnRetry: func(attempt int, err error) {
				ctx.Observer.Printf("SSH to %s not ready (attempt %d): %v", host, attempt, err)
			},
		})
	}
}
