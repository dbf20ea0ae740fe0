package orchestration

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-logr/logr"

	"github.com/imamik/azrunbook/internal/config"
	"github.com/imamik/azrunbook/internal/guestos"
	"github.com/imamik/azrunbook/internal/platform/azure"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/state"
)

const (
	lsblkDisk = `{"blockdevices":[{"name":"sdc","path":"/dev/sdc","type":"disk","size":68719476736,` +
		`"fstype":null,"uuid":null,"label":null,"mountpoint":null}]}`
	lsblkDiskPartitioned = `{"blockdevices":[{"name":"sdc","path":"/dev/sdc","type":"disk","size":68719476736,` +
		`"fstype":null,"uuid":null,"label":null,"mountpoint":null,"children":[` +
		`{"name":"sdc1","path":"/dev/sdc1","type":"part","size":68717379584,"fstype":null,"uuid":null,"label":null,"mountpoint":null}]}]}`
	lsblkPart = `{"blockdevices":[{"name":"sdc1","path":"/dev/sdc1","type":"part","size":68717379584,` +
		`"fstype":null,"uuid":null,"label":null,"mountpoint":null}]}`
	lsblkPartExt4 = `{"blockdevices":[{"name":"sdc1","path":"/dev/sdc1","type":"part","size":68717379584,` +
		`"fstype":"ext4","uuid":"0d5c3f5e-8a43-4d1c-9a51-6f1f0e8c2b77","label":"datadrive","mountpoint":null}]}`
)

// fakeCloud records every mutating control plane call made through the
// embedded MockClient.
type fakeCloud struct {
	*azure.MockClient

	mu    sync.Mutex
	calls []string
}

func newFakeCloud() *fakeCloud {
	c := &fakeCloud{}
	mock := &azure.MockClient{}
	c.MockClient = mock
	mock.EnsureResourceGroupFunc = func(_ context.Context, name, _ string, _ map[string]string) (azure.Resource, error) {
		c.record("EnsureResourceGroup")
		return azure.Resource{Kind: "resourceGroup", Name: name, ID: "rg-id", Created: true}, nil
	}
	mock.EnsureNetworkFunc = func(_ context.Context, opts azure.NetworkOpts) (*azure.NetworkResult, error) {
		c.record("EnsureNetwork")
		return &azure.NetworkResult{
			VNet:            azure.Resource{Kind: "virtualNetwork", Name: opts.VNetName, ID: "vnet-id"},
			Subnet:          azure.Resource{Kind: "subnet", Name: opts.SubnetName, ID: "subnet-id"},
			NSG:             azure.Resource{Kind: "networkSecurityGroup", Name: opts.NSGName, ID: "nsg-id"},
			PublicIP:        azure.Resource{Kind: "publicIPAddress", Name: opts.PublicIPName, ID: "pip-id"},
			NIC:             azure.Resource{Kind: "networkInterface", Name: opts.NICName, ID: "nic-id"},
			PublicIPAddress: "203.0.113.10",
		}, nil
	}
	mock.EnsureVMFunc = func(_ context.Context, opts azure.VMCreateOpts) (azure.Resource, error) {
		c.record("EnsureVM")
		return azure.Resource{Kind: "virtualMachine", Name: opts.Name, ID: "vm-id", Created: true}, nil
	}
	mock.EnsureDiskFunc = func(_ context.Context, opts azure.DiskCreateOpts) (azure.Resource, error) {
		c.record("EnsureDisk")
		return azure.Resource{Kind: "disk", Name: opts.Name, ID: "disk-id", Created: true}, nil
	}
	mock.AttachDiskFunc = func(context.Context, string, string, string, int32) (bool, error) {
		c.record("AttachDisk")
		return true, nil
	}
	mock.StartVMFunc = func(context.Context, string, string) error {
		c.record("StartVM")
		return nil
	}
	mock.DeallocateVMFunc = func(context.Context, string, string) error {
		c.record("DeallocateVM")
		return nil
	}
	return c
}

func (c *fakeCloud) record(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, op)
}

func (c *fakeCloud) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeCloud) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// fakeVM simulates the guest of a new VM with a blank data disk at LUN 0.
func fakeVM() *guestos.FakeRunner {
	r := guestos.NewFakeRunner()
	partitioned, formatted := false, false
	fstab := "LABEL=cloudimg-rootfs\t/\text4\tdefaults\t0\t1\n"
	r.On("readlink -f /dev/disk/azure/scsi1/lun0", "/dev/sdc\n", nil).
		OnFunc("sfdisk", func([]byte) (string, error) { partitioned = true; return "", nil }).
		OnFunc("mkfs.ext4", func([]byte) (string, error) { formatted = true; return "", nil }).
		OnFunc("MOUNTPOINT /dev/sdc", func([]byte) (string, error) {
			if partitioned {
				return lsblkDiskPartitioned, nil
			}
			return lsblkDisk, nil
		}).
		OnFunc("MOUNTPOINT /dev/sdc1", func([]byte) (string, error) {
			if formatted {
				return lsblkPartExt4, nil
			}
			return lsblkPart, nil
		}).
		On("blkid", "0d5c3f5e-8a43-4d1c-9a51-6f1f0e8c2b77\n", nil).
		OnFunc("cat /etc/fstab", func([]byte) (string, error) { return fstab, nil }).
		OnFunc("tee /etc/fstab.azrunbook.tmp", func(stdin []byte) (string, error) {
			fstab = string(stdin)
			return "", nil
		}).
		On("cat /etc/waagent.conf", "ResourceDisk.Format=y\nResourceDisk.EnableSwap=n\nResourceDisk.SwapSizeMB=0\n", nil)
	return r
}

func testConfig(dir string) *config.Config {
	keyPath := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(keyPath+".pub", []byte("ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAzr test\n"), 0600); err != nil {
		panic(err)
	}
	cfg := &config.Config{
		Name:            "nightly",
		SubscriptionID:  "00000000-0000-0000-0000-000000000000",
		Location:        "westeurope",
		VM:              config.VMConfig{Size: "Standard_D4s_v5", SSHKeyPath: keyPath},
		Disk:            config.DiskConfig{SizeGB: 64},
		Swap:            config.SwapConfig{Enabled: true},
		DeallocateAfter: true,
	}
	cfg.ApplyDefaults()
	return cfg
}

type fixture struct {
	cfg      *config.Config
	cloud    *fakeCloud
	vm       *guestos.FakeRunner
	store    *state.MemoryStore
	connects int
}

func newFixture(dir string) *fixture {
	return &fixture{
		cfg:   testConfig(dir),
		cloud: newFakeCloud(),
		vm:    fakeVM(),
		store: state.NewMemoryStore(),
	}
}

func (f *fixture) reconciler(opts ...Option) *Reconciler {
	base := []Option{
		WithObserver(provisioning.NewConsoleObserver(logr.Discard())),
		WithConnector(func(*provisioning.Context) (guestos.Runner, error) {
			f.connects++
			return f.vm, nil
		}),
	}
	return NewReconciler(f.cfg, f.cloud, f.store, append(base, opts...)...)
}

func (f *fixture) load() *state.WorkflowState {
	st, err := f.store.Load(context.Background(), f.cfg.Name)
	if err != nil {
		panic(err)
	}
	return st
}
