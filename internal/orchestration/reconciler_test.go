package orchestration

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/imamik/azrunbook/internal/guestos"
	"github.com/imamik/azrunbook/internal/provisioning"
	"github.com/imamik/azrunbook/internal/provisioning/compute"
	"github.com/imamik/azrunbook/internal/provisioning/guest"
	"github.com/imamik/azrunbook/internal/state"
)

var allCloudCalls = []string{
	"EnsureResourceGroup", "EnsureNetwork", "EnsureVM", "EnsureDisk", "AttachDisk", "StartVM", "DeallocateVM",
}

var _ = Describe("Reconciler", func() {
	var (
		ctx context.Context
		f   *fixture
	)

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture(GinkgoT().TempDir())
	})

	Context("on a fresh subscription", func() {
		It("provisions the VM and records every step", func() {
			res, err := f.reconciler().Apply(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Executed).To(HaveLen(len(Steps())))
			Expect(res.Skipped).To(BeEmpty())
			Expect(f.cloud.Calls()).To(Equal(allCloudCalls))
			Expect(f.connects).To(Equal(1))

			By("persisting the completion of every step")
			st := f.load()
			Expect(st.CompletedIDs()).To(HaveLen(len(Steps())))

			By("leaving the data disk in fstab")
			Expect(f.vm.Ran("mkfs.ext4")).To(BeTrue())
			Expect(f.vm.Call("tee /etc/fstab.azrunbook.tmp")).NotTo(BeNil())
			Expect(string(f.vm.Call("tee /etc/fstab.azrunbook.tmp").Stdin)).To(ContainSubstring("/datadrive"))
		})

		It("releases the state lock afterwards", func() {
			_, err := f.reconciler().Apply(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.store.Lock(ctx)).To(Succeed())
		})
	})

	Context("when the workflow already completed", func() {
		BeforeEach(func() {
			_, err := f.reconciler().Apply(ctx)
			Expect(err).NotTo(HaveOccurred())
			f.cloud.Reset()
			f.vm = fakeVM()
		})

		It("performs no external action", func() {
			res, err := f.reconciler().Apply(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Executed).To(BeEmpty())
			Expect(res.Skipped).To(HaveLen(len(Steps())))
			Expect(f.cloud.Calls()).To(BeEmpty())
			Expect(f.vm.Calls()).To(BeEmpty())
			Expect(f.connects).To(Equal(1), "no new connection after the first run")
		})

		It("plans nothing", func() {
			pending, err := f.reconciler().Plan(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(BeEmpty())
		})
	})

	Context("when attaching the disk fails", func() {
		BeforeEach(func() {
			f.cloud.AttachDiskFunc = func(context.Context, string, string, string, int32) (bool, error) {
				f.cloud.record("AttachDisk")
				return false, errors.New("OperationNotAllowed: lun 0 in use")
			}
		})

		It("stops at the failing step and resumes there", func() {
			_, err := f.reconciler().Apply(ctx)
			Expect(err).To(HaveOccurred())
			step, ok := provisioning.FailedStep(err)
			Expect(ok).To(BeTrue())
			Expect(step).To(Equal(compute.StepAttachDisk))
			Expect(err.Error()).To(ContainSubstring("lun 0 in use"))

			st := f.load()
			Expect(st.IsComplete(string(compute.StepCreateVM))).To(BeTrue())
			Expect(st.IsComplete(string(compute.StepCreateDisk))).To(BeTrue())
			Expect(st.IsComplete(string(compute.StepAttachDisk))).To(BeFalse())
			Expect(f.connects).To(BeZero())

			By("re-running once the conflict is resolved")
			f.cloud.AttachDiskFunc = func(context.Context, string, string, string, int32) (bool, error) {
				f.cloud.record("AttachDisk")
				return true, nil
			}
			f.cloud.Reset()

			res, err := f.reconciler().Apply(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.cloud.Calls()).To(Equal([]string{"AttachDisk", "StartVM", "DeallocateVM"}))
			Expect(f.cloud.Calls()).NotTo(ContainElement("EnsureVM"))
			Expect(res.Skipped).To(ConsistOf(
				compute.StepResourceGroup, compute.StepNetwork, compute.StepCreateVM, compute.StepCreateDisk,
			))
		})
	})

	Context("when the VM stopped between runs", func() {
		It("fails the guest precondition before running anything on the VM", func() {
			power := "running"
			f.cloud.PowerStateFunc = func(context.Context, string, string) (string, error) {
				return power, nil
			}
			r := f.reconciler(WithConnector(func(*provisioning.Context) (guestos.Runner, error) {
				return nil, errors.New("connection refused")
			}))
			_, err := r.Apply(ctx)
			Expect(err).To(HaveOccurred())
			step, _ := provisioning.FailedStep(err)
			Expect(step).To(Equal(guest.StepPartitionDisk))

			power = "deallocated"
			f.cloud.Reset()

			_, err = f.reconciler().Apply(ctx)
			var pre *provisioning.PreconditionError
			Expect(errors.As(err, &pre)).To(BeTrue())
			Expect(pre.Step).To(Equal(guest.StepPartitionDisk))
			Expect(err.Error()).To(ContainSubstring("deallocated"))
			Expect(f.connects).To(BeZero())
			Expect(f.vm.Calls()).To(BeEmpty())
			Expect(f.cloud.Calls()).To(BeEmpty())
		})
	})

	Context("when the state records a step without its dependencies", func() {
		BeforeEach(func() {
			st := state.New(f.cfg.Name)
			now := time.Now()
			for _, id := range []provisioning.StepID{
				compute.StepResourceGroup, compute.StepNetwork, compute.StepCreateVM, compute.StepCreateDisk,
				guest.StepPartitionDisk,
			} {
				st.MarkComplete(string(id), now, time.Second, nil)
			}
			Expect(f.store.Save(ctx, st)).To(Succeed())
		})

		It("refuses to run", func() {
			_, err := f.reconciler().Apply(ctx)
			var pre *provisioning.PreconditionError
			Expect(errors.As(err, &pre)).To(BeTrue())
			Expect(pre.Step).To(Equal(guest.StepPartitionDisk))
			Expect(pre.Missing).To(ContainElement(compute.StepStartVM))
			Expect(f.cloud.Calls()).To(BeEmpty())
			Expect(f.connects).To(BeZero())
		})

		It("refuses to plan", func() {
			_, err := f.reconciler().Plan(ctx)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("when the state is corrupt", func() {
		It("reports corruption and performs no action", func() {
			f.store.SetRaw([]byte("completed: [this is not: valid"))

			_, err := f.reconciler().Apply(ctx)
			Expect(state.IsCorruption(err)).To(BeTrue())
			Expect(f.cloud.Calls()).To(BeEmpty())
		})
	})

	Context("when another run holds the lock", func() {
		It("returns ErrLocked without loading state", func() {
			Expect(f.store.Lock(ctx)).To(Succeed())

			_, err := f.reconciler().Apply(ctx)
			Expect(errors.Is(err, state.ErrLocked)).To(BeTrue())
			Expect(f.cloud.Calls()).To(BeEmpty())
		})
	})

	Describe("Reset", func() {
		BeforeEach(func() {
			_, err := f.reconciler().Apply(ctx)
			Expect(err).NotTo(HaveOccurred())
			f.cloud.Reset()
		})

		It("re-runs the step and its dependents on the next apply", func() {
			reset, err := f.reconciler().Reset(ctx, guest.StepMountDisk)
			Expect(err).NotTo(HaveOccurred())
			Expect(reset).To(Equal([]provisioning.StepID{guest.StepMountDisk, guest.StepCopyData, compute.StepDeallocateVM}))

			pending, err := f.reconciler().Plan(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(3))

			res, err := f.reconciler().Apply(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Executed).To(Equal(reset))
			Expect(f.cloud.Calls()).To(Equal([]string{"DeallocateVM"}))
		})

		It("rejects unknown steps", func() {
			_, err := f.reconciler().Reset(ctx, "format-everything")
			Expect(err).To(MatchError(ContainSubstring(`unknown step "format-everything"`)))
		})
	})

	Describe("Status", func() {
		It("lists every step in order with its record", func() {
			_, err := f.reconciler().Apply(ctx)
			Expect(err).NotTo(HaveOccurred())

			statuses, err := f.reconciler().Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(statuses).To(HaveLen(len(Steps())))
			for _, s := range statuses {
				Expect(s.Complete).To(BeTrue(), string(s.ID))
			}
			Expect(statuses[1].ID).To(Equal(compute.StepNetwork))
			Expect(statuses[1].Outputs).To(HaveKeyWithValue(compute.OutputPublicIP, "203.0.113.10"))
		})

		It("reports incomplete steps on a fresh state", func() {
			statuses, err := f.reconciler().Status(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, s := range statuses {
				Expect(s.Complete).To(BeFalse())
				Expect(s.CompletedAt).To(BeZero())
			}
		})
	})

	Describe("Deallocate", func() {
		It("deallocates the VM without touching the state", func() {
			Expect(f.reconciler().Deallocate(ctx)).To(Succeed())
			Expect(f.cloud.Calls()).To(Equal([]string{"DeallocateVM"}))
			Expect(f.store.Saves).To(BeZero())
		})
	})
})
