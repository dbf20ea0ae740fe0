package guestos

import (
	"context"
	"fmt"
	"strings"
)

// IsMounted reports whether a filesystem is mounted at mountPoint.
func IsMounted(ctx context.Context, r Runner, mountPoint string) (bool, error) {
	out, err := r.Run(ctx, fmt.Sprintf("findmnt -n -o TARGET --mountpoint %s || true", Quote(mountPoint)), nil)
	if err != nil {
		return false, fmt.Errorf("failed to query mount %s: %w", mountPoint, err)
	}
	return strings.TrimSpace(out) == mountPoint, nil
}

// EnsureMounted mounts mountPoint from its fstab entry unless it is mounted
// already. The directory is created first.
func EnsureMounted(ctx context.Context, r Runner, mountPoint string) (bool, error) {
	mounted, err := IsMounted(ctx, r, mountPoint)
	if err != nil || mounted {
		return false, err
	}
	q := Quote(mountPoint)
	if _, err := r.Run(ctx, sudo("mkdir -p %s && sudo mount %s", q, q), nil); err != nil {
		return false, fmt.Errorf("failed to mount %s: %w", mountPoint, err)
	}
	return true, nil
}

// DataDiskEntry returns the fstab entry of a data disk filesystem. nofail
// keeps the VM bootable when the disk is detached.
func DataDiskEntry(uuid, mountPoint, fstype string) FstabEntry {
	return FstabEntry{
		Spec:    "UUID=" + uuid,
		File:    mountPoint,
		VfsType: fstype,
		Options: "defaults,nofail",
		PassNo:  2,
	}
}
