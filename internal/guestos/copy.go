package guestos

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// CopyMarker is created in the target directory once a copy finished.
const CopyMarker = ".azrunbook-copied"

// CopyResult describes the outcome of CopyTree.
type CopyResult struct {
	Copied  bool
	Entries int
	Bytes   int64
}

// CopyProgress is called after each top-level entry of the source has been
// copied.
type CopyProgress func(done, total int)

// CopyTree copies the contents of src into dst preserving attributes, one
// top-level entry at a time. A marker file in dst records a finished copy,
// so an interrupted copy is repeated while a finished one is not.
func CopyTree(ctx context.Context, r Runner, src, dst string, progress CopyProgress) (CopyResult, error) {
	marker := Quote(path.Join(dst, CopyMarker))
	out, err := r.Run(ctx, fmt.Sprintf("if sudo test -e %s; then echo done; fi", marker), nil)
	if err != nil {
		return CopyResult{}, fmt.Errorf("failed to check copy marker: %w", err)
	}
	if strings.TrimSpace(out) == "done" {
		size, err := treeSize(ctx, r, dst)
		return CopyResult{Bytes: size}, err
	}

	out, err = r.Run(ctx, fmt.Sprintf("if sudo test -d %s; then echo dir; fi", Quote(src)), nil)
	if err != nil {
		return CopyResult{}, fmt.Errorf("failed to check copy source: %w", err)
	}
	if strings.TrimSpace(out) != "dir" {
		return CopyResult{}, fmt.Errorf("copy source %s is not a directory", src)
	}

	entries, err := listEntries(ctx, r, src)
	if err != nil {
		return CopyResult{}, err
	}
	if _, err := r.Run(ctx, sudo("mkdir -p %s", Quote(dst)), nil); err != nil {
		return CopyResult{}, fmt.Errorf("failed to create %s: %w", dst, err)
	}
	target := Quote(strings.TrimSuffix(dst, "/") + "/")
	for i, name := range entries {
		if err := ctx.Err(); err != nil {
			return CopyResult{}, err
		}
		if _, err := r.Run(ctx, sudo("cp -a %s %s", Quote(path.Join(src, name)), target), nil); err != nil {
			return CopyResult{}, fmt.Errorf("failed to copy %s to %s: %w", path.Join(src, name), dst, err)
		}
		if progress != nil {
			progress(i+1, len(entries))
		}
	}
	if _, err := r.Run(ctx, sudo("touch %s", marker), nil); err != nil {
		return CopyResult{}, fmt.Errorf("failed to mark copy finished: %w", err)
	}

	size, err := treeSize(ctx, r, dst)
	return CopyResult{Copied: true, Entries: len(entries), Bytes: size}, err
}

// listEntries returns the names directly below dir, NUL separated on the
// wire so that any file name survives.
func listEntries(ctx context.Context, r Runner, dir string) ([]string, error) {
	out, err := r.Run(ctx, sudo(`find %s -mindepth 1 -maxdepth 1 -printf '%%f\0'`, Quote(dir)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, name := range strings.Split(out, "\x00") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func treeSize(ctx context.Context, r Runner, dir string) (int64, error) {
	out, err := r.Run(ctx, sudo("du -sb %s", Quote(dir)), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to measure %s: %w", dir, err)
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("unexpected du output %q", out)
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected du output %q", out)
	}
	return n, nil
}
