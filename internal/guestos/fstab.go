package guestos

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// FstabPath is the system fstab.
const FstabPath = "/etc/fstab"

// FstabEntry is one mount line of /etc/fstab.
type FstabEntry struct {
	Spec    string // device, UUID=..., or //host/share
	File    string // mount point
	VfsType string
	Options string
	Freq    int
	PassNo  int
}

func (e FstabEntry) String() string {
	opts := e.Options
	if opts == "" {
		opts = "defaults"
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d", e.Spec, e.File, e.VfsType, opts, e.Freq, e.PassNo)
}

type fstabLine struct {
	raw   string
	entry *FstabEntry
}

// Fstab is a parsed fstab. Comments and blank lines are preserved.
type Fstab struct {
	lines []fstabLine
}

// ParseFstab parses fstab content.
func ParseFstab(data string) (*Fstab, error) {
	f := &Fstab{}
	if strings.TrimSpace(data) == "" {
		return f, nil
	}
	for n, line := range strings.Split(strings.TrimRight(data, "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			f.lines = append(f.lines, fstabLine{raw: line})
			continue
		}
		e, err := parseFstabEntry(trimmed)
		if err != nil {
			return nil, fmt.Errorf("fstab line %d: %w", n+1, err)
		}
		f.lines = append(f.lines, fstabLine{raw: line, entry: e})
	}
	return f, nil
}

func parseFstabEntry(line string) (*FstabEntry, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}
	e := &FstabEntry{Spec: fields[0], File: fields[1], VfsType: fields[2], Options: fields[3]}
	var err error
	if len(fields) > 4 {
		if e.Freq, err = strconv.Atoi(fields[4]); err != nil {
			return nil, fmt.Errorf("invalid dump field %q", fields[4])
		}
	}
	if len(fields) > 5 {
		if e.PassNo, err = strconv.Atoi(fields[5]); err != nil {
			return nil, fmt.Errorf("invalid pass field %q", fields[5])
		}
	}
	return e, nil
}

// Entries returns the mount entries.
func (f *Fstab) Entries() []FstabEntry {
	var out []FstabEntry
	for _, l := range f.lines {
		if l.entry != nil {
			out = append(out, *l.entry)
		}
	}
	return out
}

// Lookup returns the entry mounted at file.
func (f *Fstab) Lookup(file string) (FstabEntry, bool) {
	for _, l := range f.lines {
		if l.entry != nil && l.entry.File == file {
			return *l.entry, true
		}
	}
	return FstabEntry{}, false
}

// Upsert adds e, or replaces the entry with the same mount point. It reports
// whether the table changed.
func (f *Fstab) Upsert(e FstabEntry) bool {
	for i, l := range f.lines {
		if l.entry == nil || l.entry.File != e.File {
			continue
		}
		if *l.entry == e {
			return false
		}
		f.lines[i] = fstabLine{raw: e.String(), entry: &e}
		return true
	}
	f.lines = append(f.lines, fstabLine{raw: e.String(), entry: &e})
	return true
}

// String renders the table. Unchanged lines keep their original text.
func (f *Fstab) String() string {
	var b strings.Builder
	for _, l := range f.lines {
		b.WriteString(l.raw)
		b.WriteByte('\n')
	}
	return b.String()
}

// EnsureFstabEntry adds or updates e in /etc/fstab. A backup of the previous
// table is kept next to it.
func EnsureFstabEntry(ctx context.Context, r Runner, e FstabEntry) (bool, error) {
	data, err := readFile(ctx, r, FstabPath)
	if err != nil {
		return false, err
	}
	fstab, err := ParseFstab(data)
	if err != nil {
		return false, err
	}
	if !fstab.Upsert(e) {
		return false, nil
	}

	if _, err := r.Run(ctx, sudo("cp -p %s %s.azrunbook.bak", FstabPath, FstabPath), nil); err != nil {
		return false, fmt.Errorf("failed to back up %s: %w", FstabPath, err)
	}
	if err := writeFile(ctx, r, FstabPath, []byte(fstab.String()), "0644"); err != nil {
		return false, err
	}
	return true, nil
}
