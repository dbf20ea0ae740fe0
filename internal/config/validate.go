package config

import (
	"fmt"
	"net"
	"path"
	"regexp"
	"strings"
)

var (
	nameRegex           = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
	storageAccountRegex = regexp.MustCompile(`^[a-z0-9]{3,24}$`)
	shareNameRegex      = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9]){2,62}$`)
)

// Severity levels for validation findings.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == SeverityError
}

// ImageURN identifies a marketplace image.
type ImageURN struct {
	Publisher string
	Offer     string
	SKU       string
	Version   string
}

// ParseImageURN parses Publisher:Offer:Sku:Version.
func ParseImageURN(s string) (ImageURN, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 4 {
		return ImageURN{}, fmt.Errorf("image %q must have the form Publisher:Offer:Sku:Version", s)
	}
	for _, p := range parts {
		if p == "" {
			return ImageURN{}, fmt.Errorf("image %q has an empty component", s)
		}
	}
	return ImageURN{Publisher: parts[0], Offer: parts[1], SKU: parts[2], Version: parts[3]}, nil
}

// String returns the URN form of the image.
func (u ImageURN) String() string {
	return strings.Join([]string{u.Publisher, u.Offer, u.SKU, u.Version}, ":")
}

// Validate checks the configuration and returns an error listing every
// error-level finding. Warnings are available through Check.
func (c *Config) Validate() error {
	var errMsgs []string
	for _, ve := range c.Check() {
		if ve.IsError() {
			errMsgs = append(errMsgs, ve.Error())
		}
	}
	if len(errMsgs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errMsgs, "\n  "))
	}
	return nil
}

// RequireSubscription reports an error when no subscription is configured.
// Only operations that talk to the control plane need one.
func (c *Config) RequireSubscription() error {
	if c.SubscriptionID == "" {
		return fmt.Errorf("subscription_id is required (set it in the config file or via %s)", EnvSubscriptionID)
	}
	return nil
}

// Check runs all validation rules and returns every finding.
func (c *Config) Check() []ValidationError {
	var out []ValidationError
	add := func(field, severity, format string, args ...any) {
		out = append(out, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: severity})
	}

	if c.Name == "" {
		add("name", SeverityError, "is required")
	} else if !nameRegex.MatchString(c.Name) {
		add("name", SeverityError, "must be 1-63 lowercase alphanumeric characters or hyphens")
	}
	if c.ResourceGroup == "" {
		add("resource_group", SeverityError, "is required")
	}
	if c.Location == "" {
		add("location", SeverityError, "is required")
	}

	if c.VM.Name == "" {
		add("vm.name", SeverityError, "is required")
	}
	if _, err := ParseImageURN(c.VM.Image); err != nil {
		add("vm.image", SeverityError, "%v", err)
	}
	if c.VM.Size == "" {
		add("vm.size", SeverityError, "is required")
	}
	if c.VM.AdminUser == "" {
		add("vm.admin_user", SeverityError, "is required")
	} else if c.VM.AdminUser == "root" || c.VM.AdminUser == "admin" {
		add("vm.admin_user", SeverityError, "%q is reserved by Azure", c.VM.AdminUser)
	}
	if c.VM.SSHPort != DefaultSSHPort {
		add("vm.ssh_port", SeverityError, "sshd on the image listens on %d; other ports are not supported", DefaultSSHPort)
	}

	out = append(out, c.Network.check()...)
	out = append(out, c.Disk.check()...)

	if c.Swap.Enabled && c.Swap.SizeMB <= 0 {
		add("swap.size_mb", SeverityError, "must be positive when swap is enabled")
	}

	out = append(out, c.checkShare()...)
	out = append(out, c.State.check()...)

	return out
}

func (n NetworkConfig) check() []ValidationError {
	var out []ValidationError
	_, vnet, err := net.ParseCIDR(n.AddressPrefix)
	if err != nil {
		out = append(out, ValidationError{Field: "network.address_prefix", Message: fmt.Sprintf("invalid CIDR %q", n.AddressPrefix), Severity: SeverityError})
	}
	subnetIP, _, err := net.ParseCIDR(n.SubnetPrefix)
	if err != nil {
		out = append(out, ValidationError{Field: "network.subnet_prefix", Message: fmt.Sprintf("invalid CIDR %q", n.SubnetPrefix), Severity: SeverityError})
	} else if vnet != nil && !vnet.Contains(subnetIP) {
		out = append(out, ValidationError{Field: "network.subnet_prefix", Message: fmt.Sprintf("%s is outside %s", n.SubnetPrefix, n.AddressPrefix), Severity: SeverityError})
	}
	if n.SSHSourcePrefix == "*" || n.SSHSourcePrefix == "0.0.0.0/0" {
		out = append(out, ValidationError{Field: "network.ssh_source_prefix", Message: "SSH is reachable from the whole internet", Severity: SeverityWarning})
	}
	return out
}

func (d DiskConfig) check() []ValidationError {
	var out []ValidationError
	add := func(field, format string, args ...any) {
		out = append(out, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	if d.Name == "" {
		add("disk.name", "is required")
	}
	if d.SizeGB <= 0 || d.SizeGB > 32767 {
		add("disk.size_gb", "must be between 1 and 32767")
	}
	if !ValidDiskSKUs[d.SKU] {
		add("disk.sku", "unsupported sku %q", d.SKU)
	}
	if d.LUN < 0 || d.LUN > 63 {
		add("disk.lun", "must be between 0 and 63")
	}
	if !ValidFilesystems[d.Filesystem] {
		add("disk.filesystem", "unsupported filesystem %q", d.Filesystem)
	}
	if limit, ok := maxLabelLength[d.Filesystem]; ok && len(d.Label) > limit {
		add("disk.label", "must be at most %d characters for %s", limit, d.Filesystem)
	}
	if !path.IsAbs(d.MountPoint) || d.MountPoint == "/" {
		add("disk.mount_point", "must be an absolute path other than /")
	}
	return out
}

func (c *Config) checkShare() []ValidationError {
	var out []ValidationError
	add := func(field, format string, args ...any) {
		out = append(out, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	s := c.Share
	if (s.StorageAccount == "") != (s.Name == "") {
		add("share", "storage_account and name must be set together")
	}
	if s.StorageAccount != "" && !storageAccountRegex.MatchString(s.StorageAccount) {
		add("share.storage_account", "must be 3-24 lowercase letters or digits")
	}
	if s.Name != "" && !shareNameRegex.MatchString(s.Name) {
		add("share.name", "invalid share name %q", s.Name)
	}
	if s.Enabled() && (!path.IsAbs(s.MountPoint) || s.MountPoint == "/") {
		add("share.mount_point", "must be an absolute path other than /")
	}
	if s.Enabled() && s.MountPoint == c.Disk.MountPoint {
		add("share.mount_point", "must differ from disk.mount_point")
	}

	if c.Copy.Source != "" || c.Copy.Target != "" {
		if !s.Enabled() {
			add("copy", "requires a share")
		}
		for field, p := range map[string]string{"copy.source": c.Copy.Source, "copy.target": c.Copy.Target} {
			if path.IsAbs(p) || strings.HasPrefix(path.Clean(p), "..") {
				add(field, "must be a relative path inside its mount point")
			}
		}
	}
	return out
}

func (s StateConfig) check() []ValidationError {
	var out []ValidationError
	switch s.Backend {
	case BackendLocal:
		if s.Path == "" {
			out = append(out, ValidationError{Field: "state.path", Message: "is required for the local backend", Severity: SeverityError})
		}
	case BackendS3:
		if s.Bucket == "" {
			out = append(out, ValidationError{Field: "state.bucket", Message: "is required for the s3 backend", Severity: SeverityError})
		}
		if (s.AccessKey == "") != (s.SecretKey == "") {
			out = append(out, ValidationError{Field: "state.access_key", Message: "access_key and secret_key must be set together", Severity: SeverityError})
		}
	default:
		out = append(out, ValidationError{Field: "state.backend", Message: fmt.Sprintf("unknown backend %q", s.Backend), Severity: SeverityError})
	}
	return out
}
