package guestos

import (
	"context"
	"fmt"
	"strings"
)

const credentialsDir = "/etc/smbcredentials"

// CIFSShare describes an Azure Files share mounted over SMB.
type CIFSShare struct {
	Account    string
	Share      string
	Key        string
	Endpoint   string // e.g. file.core.windows.net
	MountPoint string
}

// Source is the UNC path of the share.
func (s CIFSShare) Source() string {
	return fmt.Sprintf("//%s.%s/%s", s.Account, s.Endpoint, s.Share)
}

// CredentialsPath is the root-only file holding the account key.
func (s CIFSShare) CredentialsPath() string {
	return fmt.Sprintf("%s/%s.cred", credentialsDir, s.Account)
}

func (s CIFSShare) credentials() string {
	return fmt.Sprintf("username=%s\npassword=%s\n", s.Account, s.Key)
}

// FstabEntry returns the persistent mount of the share.
func (s CIFSShare) FstabEntry() FstabEntry {
	opts := []string{
		"nofail",
		"credentials=" + s.CredentialsPath(),
		"dir_mode=0777",
		"file_mode=0777",
		"serverino",
		"nosharesock",
		"actimeo=30",
	}
	return FstabEntry{
		Spec:    s.Source(),
		File:    s.MountPoint,
		VfsType: "cifs",
		Options: strings.Join(opts, ","),
	}
}

// EnsureCIFSUtils installs cifs-utils unless mount.cifs is available.
func EnsureCIFSUtils(ctx context.Context, r Runner) (bool, error) {
	out, err := r.Run(ctx, "command -v mount.cifs || true", nil)
	if err != nil {
		return false, fmt.Errorf("failed to look up mount.cifs: %w", err)
	}
	if strings.TrimSpace(out) != "" {
		return false, nil
	}
	cmd := "sudo DEBIAN_FRONTEND=noninteractive apt-get update -q && " +
		"sudo DEBIAN_FRONTEND=noninteractive apt-get install -y -q cifs-utils"
	if _, err := r.Run(ctx, cmd, nil); err != nil {
		return false, fmt.Errorf("failed to install cifs-utils: %w", err)
	}
	return true, nil
}

// EnsureCredentials writes the share credentials file with mode 0600 unless
// it already holds the same content.
func EnsureCredentials(ctx context.Context, r Runner, s CIFSShare) (bool, error) {
	path := s.CredentialsPath()
	current, err := readFile(ctx, r, path)
	if err != nil {
		return false, err
	}
	if current == s.credentials() {
		return false, nil
	}
	if _, err := r.Run(ctx, sudo("mkdir -p %s && sudo chmod 0700 %s", credentialsDir, credentialsDir), nil); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", credentialsDir, err)
	}
	if err := writeFile(ctx, r, path, []byte(s.credentials()), "0600"); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureShareMounted installs the CIFS tools, writes credentials and the
// fstab entry, and mounts the share. It reports whether anything changed.
func EnsureShareMounted(ctx context.Context, r Runner, s CIFSShare) (bool, error) {
	changed := false
	steps := []func() (bool, error){
		func() (bool, error) { return EnsureCIFSUtils(ctx, r) },
		func() (bool, error) { return EnsureCredentials(ctx, r, s) },
		func() (bool, error) { return EnsureFstabEntry(ctx, r, s.FstabEntry()) },
		func() (bool, error) { return EnsureMounted(ctx, r, s.MountPoint) },
	}
	for _, step := range steps {
		c, err := step()
		if err != nil {
			return changed, err
		}
		changed = changed || c
	}
	return changed, nil
}
