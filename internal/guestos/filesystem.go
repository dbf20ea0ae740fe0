package guestos

import (
	"context"
	"fmt"
)

// EnsureFilesystem creates a filesystem of type fstype on partition unless
// one exists. An existing filesystem of another type is an error; it is
// never overwritten. The filesystem UUID is returned.
func EnsureFilesystem(ctx context.Context, r Runner, partition, fstype, label string) (string, bool, error) {
	dev, err := Inspect(ctx, r, partition)
	if err != nil {
		return "", false, err
	}

	changed := false
	switch dev.FSType {
	case "":
		cmd, err := mkfsCommand(partition, fstype, label)
		if err != nil {
			return "", false, err
		}
		if _, err := r.Run(ctx, cmd, nil); err != nil {
			return "", false, fmt.Errorf("failed to create %s filesystem on %s: %w", fstype, partition, err)
		}
		changed = true
	case fstype:
	default:
		return "", false, fmt.Errorf("%s already holds a %s filesystem, expected %s", partition, dev.FSType, fstype)
	}

	uuid, err := FilesystemUUID(ctx, r, partition)
	if err != nil {
		return "", changed, err
	}
	return uuid, changed, nil
}

func mkfsCommand(partition, fstype, label string) (string, error) {
	q := Quote(partition)
	switch fstype {
	case "ext4":
		if label != "" {
			return sudo("mkfs.ext4 -q -L %s %s", Quote(label), q), nil
		}
		return sudo("mkfs.ext4 -q %s", q), nil
	case "xfs":
		if label != "" {
			return sudo("mkfs.xfs -q -L %s %s", Quote(label), q), nil
		}
		return sudo("mkfs.xfs -q %s", q), nil
	default:
		return "", fmt.Errorf("unsupported filesystem %q", fstype)
	}
}
