package guestos

import (
	"context"
	"fmt"
	"strings"
)

// Runner executes shell commands on the guest. Implemented by the SSH
// client.
type Runner interface {
	// Run executes command and returns its stdout. stdin, when non-nil, is
	// passed to the command.
	Run(ctx context.Context, command string, stdin []byte) (string, error)
}

// Quote quotes s for a POSIX shell.
func Quote(s string) string {
	if s != "" && strings.IndexFunc(s, needsQuote) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("-_./=:,@+", r):
		return false
	}
	return true
}

func sudo(format string, args ...any) string {
	return "sudo " + fmt.Sprintf(format, args...)
}

// readFile returns the content of path, or "" when it does not exist.
func readFile(ctx context.Context, r Runner, path string) (string, error) {
	q := Quote(path)
	out, err := r.Run(ctx, fmt.Sprintf("if sudo test -e %s; then sudo cat %s; fi", q, q), nil)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}

// writeFile replaces path with data. The content is written to a temporary
// file first and moved into place.
func writeFile(ctx context.Context, r Runner, path string, data []byte, mode string) error {
	tmp := Quote(path + ".azrunbook.tmp")
	cmd := fmt.Sprintf("sudo tee %s > /dev/null && sudo chmod %s %s && sudo mv -f %s %s",
		tmp, mode, tmp, tmp, Quote(path))
	if _, err := r.Run(ctx, cmd, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
