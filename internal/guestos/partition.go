package guestos

import (
	"context"
	"fmt"
	"strings"
)

// PartitionTypeLinux is the sfdisk alias of the Linux filesystem type.
const PartitionTypeLinux = "L"

// Partition describes one partition of a PartitionTable.
type Partition struct {
	// SizeMiB is the partition size. Zero uses the remaining space.
	SizeMiB int
	// Type is an sfdisk type alias or GUID. Defaults to Linux filesystem.
	Type string
	// Name is the GPT partition name.
	Name string
}

// PartitionTable is the desired layout of a disk, rendered as an sfdisk
// script.
type PartitionTable struct {
	// Label is the table type, "gpt" or "dos".
	Label      string
	Partitions []Partition
}

// SinglePartition is a GPT table with one Linux partition spanning the disk.
func SinglePartition(name string) PartitionTable {
	return PartitionTable{
		Label:      "gpt",
		Partitions: []Partition{{Type: PartitionTypeLinux, Name: name}},
	}
}

// Validate checks that the table can be rendered.
func (pt PartitionTable) Validate() error {
	if pt.Label != "gpt" && pt.Label != "dos" {
		return fmt.Errorf("unsupported partition table label %q", pt.Label)
	}
	if len(pt.Partitions) == 0 {
		return fmt.Errorf("partition table has no partitions")
	}
	for i, p := range pt.Partitions {
		if p.SizeMiB < 0 {
			return fmt.Errorf("partition %d has negative size", i+1)
		}
		if p.SizeMiB == 0 && i != len(pt.Partitions)-1 {
			return fmt.Errorf("only the last partition may use the remaining space")
		}
		if strings.ContainsAny(p.Name, "\",\n") {
			return fmt.Errorf("partition %d name %q contains invalid characters", i+1, p.Name)
		}
	}
	return nil
}

// Script renders the table as sfdisk input.
func (pt PartitionTable) Script() string {
	var b strings.Builder
	fmt.Fprintf(&b, "label: %s\n\n", pt.Label)
	for _, p := range pt.Partitions {
		var fields []string
		if p.SizeMiB > 0 {
			fields = append(fields, fmt.Sprintf("size=%dMiB", p.SizeMiB))
		}
		typ := p.Type
		if typ == "" {
			typ = PartitionTypeLinux
		}
		fields = append(fields, "type="+typ)
		if p.Name != "" && pt.Label == "gpt" {
			fields = append(fields, fmt.Sprintf("name=%q", p.Name))
		}
		b.WriteString(strings.Join(fields, ", "))
		b.WriteByte('\n')
	}
	return b.String()
}

// PartitionPath returns the device path of partition n of device.
// Devices ending in a digit (nvme0n1) use a "p" separator.
func PartitionPath(device string, n int) string {
	if device != "" && device[len(device)-1] >= '0' && device[len(device)-1] <= '9' {
		return fmt.Sprintf("%sp%d", device, n)
	}
	return fmt.Sprintf("%s%d", device, n)
}

// EnsurePartitioned writes pt to device unless the device already carries
// partitions. It returns the path of the first partition and whether the
// table was written. A device holding a filesystem without partition table
// is refused.
func EnsurePartitioned(ctx context.Context, r Runner, device string, pt PartitionTable) (string, bool, error) {
	if err := pt.Validate(); err != nil {
		return "", false, err
	}

	dev, err := Inspect(ctx, r, device)
	if err != nil {
		return "", false, err
	}
	if parts := dev.Partitions(); len(parts) > 0 {
		if len(parts) < len(pt.Partitions) {
			return "", false, fmt.Errorf("%s has %d partitions, expected %d", device, len(parts), len(pt.Partitions))
		}
		return partitionPath(parts[0], device), false, nil
	}
	if dev.FSType != "" {
		return "", false, fmt.Errorf("%s holds a %s filesystem without partition table, refusing to partition", device, dev.FSType)
	}
	if dev.MountPoint != "" {
		return "", false, fmt.Errorf("%s is mounted at %s, refusing to partition", device, dev.MountPoint)
	}

	q := Quote(device)
	if _, err := r.Run(ctx, sudo("sfdisk --quiet --wipe always %s", q), []byte(pt.Script())); err != nil {
		return "", false, fmt.Errorf("failed to partition %s: %w", device, err)
	}
	if _, err := r.Run(ctx, sudo("partprobe %s && sudo udevadm settle", q), nil); err != nil {
		return "", false, fmt.Errorf("failed to reload partition table of %s: %w", device, err)
	}

	dev, err = Inspect(ctx, r, device)
	if err != nil {
		return "", false, err
	}
	parts := dev.Partitions()
	if len(parts) == 0 {
		return "", false, fmt.Errorf("no partition visible on %s after partitioning", device)
	}
	return partitionPath(parts[0], device), true, nil
}

func partitionPath(p BlockDevice, device string) string {
	if p.Path != "" {
		return p.Path
	}
	if p.Name != "" {
		return "/dev/" + p.Name
	}
	return PartitionPath(device, 1)
}
