package guestos

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseFstab = `# /etc/fstab: static file system information.
LABEL=cloudimg-rootfs	/	 ext4	discard,errors=remount-ro	0 1
LABEL=UEFI	/boot/efi	vfat	umask=0077	0 1

/dev/disk/cloud/azure_resource-part1	/mnt	auto	defaults,nofail,x-systemd.requires=cloud-init.service,_netdev,comment=cloudconfig	0	2
`

func TestParseFstab(t *testing.T) {
	t.Parallel()
	f, err := ParseFstab(baseFstab)
	require.NoError(t, err)

	entries := f.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "/", entries[0].File)
	assert.Equal(t, 1, entries[0].PassNo)
	assert.Equal(t, "vfat", entries[1].VfsType)

	e, ok := f.Lookup("/mnt")
	require.True(t, ok)
	assert.Equal(t, 2, e.PassNo)

	assert.Equal(t, baseFstab, f.String(), "unchanged table must render byte-identical")
}

func TestParseFstab_Invalid(t *testing.T) {
	t.Parallel()
	_, err := ParseFstab("/dev/sdc1 /data\n")
	assert.ErrorContains(t, err, "fstab line 1")

	_, err = ParseFstab("/dev/sdc1 /data ext4 defaults x 0\n")
	assert.ErrorContains(t, err, "invalid dump field")
}

func TestParseFstab_Empty(t *testing.T) {
	t.Parallel()
	f, err := ParseFstab("")
	require.NoError(t, err)
	assert.Empty(t, f.Entries())
	assert.Equal(t, "", f.String())
}

func TestFstab_Upsert(t *testing.T) {
	t.Parallel()
	f, err := ParseFstab(baseFstab)
	require.NoError(t, err)

	entry := DataDiskEntry(testUUID, "/datadrive", "ext4")
	assert.True(t, f.Upsert(entry))
	assert.False(t, f.Upsert(entry), "identical entry must not change the table")
	assert.Len(t, f.Entries(), 4)
	assert.True(t, strings.HasSuffix(f.String(), "UUID="+testUUID+"\t/datadrive\text4\tdefaults,nofail\t0\t2\n"))

	entry.Options = "defaults,nofail,noatime"
	assert.True(t, f.Upsert(entry))
	assert.Len(t, f.Entries(), 4)
	got, _ := f.Lookup("/datadrive")
	assert.Equal(t, "defaults,nofail,noatime", got.Options)
	assert.True(t, strings.HasPrefix(f.String(), "# /etc/fstab: static file system information.\n"))
}

func TestEnsureFstabEntry(t *testing.T) {
	t.Parallel()
	r := NewFakeRunner().On("cat /etc/fstab", baseFstab, nil)
	entry := DataDiskEntry(testUUID, "/datadrive", "ext4")

	changed, err := EnsureFstabEntry(context.Background(), r, entry)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, r.Ran("sudo cp -p /etc/fstab /etc/fstab.azrunbook.bak"))

	call := r.Call("tee /etc/fstab.azrunbook.tmp")
	require.NotNil(t, call)
	assert.Contains(t, string(call.Stdin), "UUID="+testUUID+"\t/datadrive")
	assert.Contains(t, string(call.Stdin), "LABEL=cloudimg-rootfs")
}

func TestEnsureFstabEntry_Present(t *testing.T) {
	t.Parallel()
	entry := DataDiskEntry(testUUID, "/datadrive", "ext4")
	r := NewFakeRunner().On("cat /etc/fstab", baseFstab+entry.String()+"\n", nil)

	changed, err := EnsureFstabEntry(context.Background(), r, entry)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, r.Ran("tee"))
}
