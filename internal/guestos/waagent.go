package guestos

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Keys of /etc/waagent.conf controlling swap on the resource disk.
const (
	KeyEnableSwap = "ResourceDisk.EnableSwap"
	KeySwapSizeMB = "ResourceDisk.SwapSizeMB"
)

// WaagentConfig is a parsed Azure Linux agent configuration. Values are
// read through the parsed file; changes are written back into the original
// text line by line so comments and layout are kept.
type WaagentConfig struct {
	file  *ini.File
	lines []string
	edits []keyEdit
}

type keyEdit struct {
	key, value string
}

// ParseWaagentConfig parses waagent.conf content.
func ParseWaagentConfig(data []byte) (*WaagentConfig, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse agent configuration: %w", err)
	}
	return &WaagentConfig{file: f, lines: strings.SplitAfter(string(data), "\n")}, nil
}

func (w *WaagentConfig) section() *ini.Section {
	return w.file.Section(ini.DefaultSection)
}

// Get returns the value of key.
func (w *WaagentConfig) Get(key string) string {
	return w.section().Key(key).String()
}

// set updates key and reports whether the value changed.
func (w *WaagentConfig) set(key, value string) bool {
	sec := w.section()
	if sec.HasKey(key) && sec.Key(key).String() == value {
		return false
	}
	sec.Key(key).SetValue(value)
	for i := range w.edits {
		if w.edits[i].key == key {
			w.edits[i].value = value
			return true
		}
	}
	w.edits = append(w.edits, keyEdit{key: key, value: value})
	return true
}

// SwapEnabled reports whether the agent creates swap on the resource disk.
func (w *WaagentConfig) SwapEnabled() bool {
	return w.Get(KeyEnableSwap) == "y"
}

// SwapSizeMB returns the configured swap size.
func (w *WaagentConfig) SwapSizeMB() int {
	n, _ := strconv.Atoi(w.Get(KeySwapSizeMB))
	return n
}

// SetSwap configures swap and reports whether anything changed.
func (w *WaagentConfig) SetSwap(enabled bool, sizeMB int) bool {
	flag := "n"
	if enabled {
		flag = "y"
	}
	changed := w.set(KeyEnableSwap, flag)
	if enabled {
		changed = w.set(KeySwapSizeMB, strconv.Itoa(sizeMB)) || changed
	}
	return changed
}

// Bytes renders the configuration: the original text with changed keys
// rewritten in place and new keys appended.
func (w *WaagentConfig) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	written := make(map[string]bool, len(w.edits))
	for _, line := range w.lines {
		if key, ok := lineKey(line); ok {
			if value, edited := w.edit(key); edited {
				fmt.Fprintf(&buf, "%s=%s\n", key, value)
				written[key] = true
				continue
			}
		}
		buf.WriteString(line)
	}
	if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteByte('\n')
	}
	for _, e := range w.edits {
		if !written[e.key] {
			fmt.Fprintf(&buf, "%s=%s\n", e.key, e.value)
		}
	}
	return buf.Bytes(), nil
}

func (w *WaagentConfig) edit(key string) (string, bool) {
	for _, e := range w.edits {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// lineKey returns the key assigned on a key=value line.
func lineKey(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == '#' || trimmed[0] == ';' {
		return "", false
	}
	key, _, ok := strings.Cut(trimmed, "=")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(key), true
}

// EnsureSwap configures resource disk swap in the agent configuration at
// path and restarts service when the file changed.
func EnsureSwap(ctx context.Context, r Runner, path, service string, enabled bool, sizeMB int) (bool, error) {
	data, err := readFile(ctx, r, path)
	if err != nil {
		return false, err
	}
	if data == "" {
		return false, fmt.Errorf("agent configuration %s is missing or empty", path)
	}
	cfg, err := ParseWaagentConfig([]byte(data))
	if err != nil {
		return false, err
	}
	if !cfg.SetSwap(enabled, sizeMB) {
		return false, nil
	}

	out, err := cfg.Bytes()
	if err != nil {
		return false, err
	}
	if err := writeFile(ctx, r, path, out, "0644"); err != nil {
		return false, err
	}
	if _, err := r.Run(ctx, sudo("systemctl restart %s", Quote(service)), nil); err != nil {
		return true, fmt.Errorf("failed to restart %s: %w", service, err)
	}
	return true, nil
}
