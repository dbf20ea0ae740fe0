package guestos

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// azureLUNPath is maintained by the Azure udev rules and links each data
// disk LUN to its kernel device.
const azureLUNPath = "/dev/disk/azure/scsi1/lun%d"

// BlockDevice is a device as reported by lsblk.
type BlockDevice struct {
	Name       string        `json:"name"`
	Path       string        `json:"path"`
	Type       string        `json:"type"`
	Size       ByteSize      `json:"size"`
	FSType     string        `json:"fstype"`
	UUID       string        `json:"uuid"`
	Label      string        `json:"label"`
	MountPoint string        `json:"mountpoint"`
	Children   []BlockDevice `json:"children,omitempty"`
}

// ByteSize accepts lsblk sizes printed either as number or as string.
type ByteSize uint64

// UnmarshalJSON implements json.Unmarshaler.
func (b *ByteSize) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*b = 0
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size %s: %w", data, err)
	}
	*b = ByteSize(n)
	return nil
}

// Partitions returns the partition children of the device.
func (d *BlockDevice) Partitions() []BlockDevice {
	var parts []BlockDevice
	for _, c := range d.Children {
		if c.Type == "part" {
			parts = append(parts, c)
		}
	}
	return parts
}

type lsblkOutput struct {
	BlockDevices []BlockDevice `json:"blockdevices"`
}

// ResolveLUN returns the kernel device of the data disk attached at lun.
func ResolveLUN(ctx context.Context, r Runner, lun int32) (string, error) {
	link := fmt.Sprintf(azureLUNPath, lun)
	out, err := r.Run(ctx, "readlink -f "+Quote(link), nil)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", link, err)
	}
	dev := strings.TrimSpace(out)
	if dev == "" || dev == link {
		return "", fmt.Errorf("no device for LUN %d: %s does not exist", lun, link)
	}
	return dev, nil
}

// Inspect returns lsblk information for device, including its partitions.
func Inspect(ctx context.Context, r Runner, device string) (*BlockDevice, error) {
	out, err := r.Run(ctx, "lsblk --json --bytes -o NAME,PATH,TYPE,SIZE,FSTYPE,UUID,LABEL,MOUNTPOINT "+Quote(device), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect %s: %w", device, err)
	}
	return parseLsblk(out, device)
}

func parseLsblk(out, device string) (*BlockDevice, error) {
	var parsed lsblkOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse lsblk output for %s: %w", device, err)
	}
	if len(parsed.BlockDevices) == 0 {
		return nil, fmt.Errorf("lsblk returned no device for %s", device)
	}
	dev := parsed.BlockDevices[0]
	return &dev, nil
}

// FilesystemUUID reads the filesystem UUID of device with blkid, bypassing
// the lsblk udev cache.
func FilesystemUUID(ctx context.Context, r Runner, device string) (string, error) {
	out, err := r.Run(ctx, sudo("blkid -s UUID -o value %s", Quote(device)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to read UUID of %s: %w", device, err)
	}
	uuid := strings.TrimSpace(out)
	if uuid == "" {
		return "", fmt.Errorf("%s has no filesystem UUID", device)
	}
	return uuid, nil
}
