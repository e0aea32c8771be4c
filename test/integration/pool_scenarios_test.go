package integration_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dreamware/dynclust/internal/pool"
)

func newScenarioController(cfg *pool.Config, em *scenarioEntityManager, lr *scenarioLocationResolver) *pool.Controller {
	cluster := &pool.Cluster{ID: "scenario-cluster"}
	allocator := pool.NewMemberIDAllocator(nil, cluster.ID)
	ctrl, err := pool.NewController(cfg, cluster, em, scenarioTaskRunner{}, lr, allocator)
	Expect(err).NotTo(HaveOccurred())
	return ctrl
}

var _ = Describe("Pool Controller", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("starting without zones", func() {
		It("reaches current_size 3 and publishes service_up when every member starts", func() {
			em := newScenarioEntityManager()
			lr := newScenarioLocationResolver()
			cfg := &pool.Config{InitialSize: 3, InitialQuorumSize: -1, MemberSpec: &pool.MemberSpec{Name: "worker"}}
			ctrl := newScenarioController(cfg, em, lr)

			Expect(ctrl.Start(ctx, []pool.Location{"dc1"})).To(Succeed())
			Expect(ctrl.Cluster().CurrentSize()).To(Equal(3))

			up, ok := em.GetSensor(ctx, pool.EntityRef("scenario-cluster"), pool.SensorServiceUp)
			Expect(ok).To(BeTrue())
			Expect(up).To(Equal(true))
		})
	})

	Describe("quorum met but below initial size", func() {
		It("succeeds with the reduced size and unmanages the failed member", func() {
			em := newScenarioEntityManager()
			em.FailFirstN.Store(1)
			lr := newScenarioLocationResolver()
			cfg := &pool.Config{InitialSize: 3, InitialQuorumSize: 2, MemberSpec: &pool.MemberSpec{Name: "worker"}}
			ctrl := newScenarioController(cfg, em, lr)

			Expect(ctrl.Start(ctx, []pool.Location{"dc1"})).To(Succeed())
			Expect(ctrl.Cluster().CurrentSize()).To(Equal(2))

			// worker-1 receives the first StartTask call, which FailFirstN fails.
			_, managed := em.Resolve(ctx, "worker-1")
			Expect(managed).To(BeFalse())
		})
	})

	Describe("zone mode round robin placement", func() {
		It("splits members evenly across zones with no failed sub-locations", func() {
			em := newScenarioEntityManager()
			lr := newScenarioLocationResolver("zone-a", "zone-b")
			cfg := &pool.Config{
				InitialSize:             4,
				InitialQuorumSize:       -1,
				MemberSpec:              &pool.MemberSpec{Name: "worker"},
				EnableAvailabilityZones: true,
			}
			ctrl := newScenarioController(cfg, em, lr)

			Expect(ctrl.Start(ctx, []pool.Location{"dc1"})).To(Succeed())
			Expect(ctrl.Cluster().FailedSubLocations).To(BeEmpty())

			byZone := map[pool.Location]int{}
			for _, m := range ctrl.Cluster().Members {
				byZone[m.Locations[0]]++
			}
			Expect(byZone["zone-a"]).To(Equal(2))
			Expect(byZone["zone-b"]).To(Equal(2))
		})
	})

	Describe("zone failure detection", func() {
		It("excludes a consistently-failing zone from placement after the threshold", func() {
			em := newScenarioEntityManager()
			em.StartFails["zone-a"] = true
			lr := newScenarioLocationResolver("zone-a", "zone-b")
			cfg := &pool.Config{
				InitialSize:             0,
				InitialQuorumSize:       -1,
				MemberSpec:              &pool.MemberSpec{Name: "worker"},
				EnableAvailabilityZones: true,
				ZoneFailureThreshold:    2,
			}
			ctrl := newScenarioController(cfg, em, lr)
			Expect(ctrl.Start(ctx, []pool.Location{"dc1"})).To(Succeed())

			_, err := ctrl.Grow(ctx, 2)
			Expect(err).To(HaveOccurred())
			_, err = ctrl.Grow(ctx, 2)
			Expect(err).To(HaveOccurred())

			members, err := ctrl.Grow(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ctrl.Cluster().FailedSubLocations["zone-a"]).To(BeTrue())
			for _, m := range members {
				Expect(m.Locations[0]).To(Equal(pool.Location("zone-b")))
			}
		})
	})

	Describe("replaceMember", func() {
		It("swaps in a fresh member at the same location without changing cluster size", func() {
			em := newScenarioEntityManager()
			lr := newScenarioLocationResolver()
			cfg := &pool.Config{InitialSize: 1, InitialQuorumSize: -1, MemberSpec: &pool.MemberSpec{Name: "worker"}}
			ctrl := newScenarioController(cfg, em, lr)
			Expect(ctrl.Start(ctx, []pool.Location{"dc1"})).To(Succeed())

			old := ctrl.Cluster().Members[0]
			newID, err := ctrl.ReplaceMember(ctx, old.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(newID).NotTo(Equal(old.ID))
			Expect(ctrl.Cluster().Members).To(HaveLen(1))
			Expect(ctrl.Cluster().Members[0].Locations).To(Equal(old.Locations))

			_, stillUp := em.GetSensor(ctx, old.ID, pool.SensorEntityQuarantined)
			Expect(stillUp).To(BeFalse())
		})
	})

	Describe("default removal strategy", func() {
		It("picks the highest cluster_member_id among startable candidates", func() {
			m1 := &pool.Member{ID: "m1", ClusterMemberID: 1, IsStartable: false}
			m2 := &pool.Member{ID: "m2", ClusterMemberID: 5, IsStartable: true}
			m3 := &pool.Member{ID: "m3", ClusterMemberID: 3, IsStartable: true}

			picked := pool.DefaultRemovalStrategy([]*pool.Member{m1, m2, m3})
			Expect(picked.ID).To(Equal(m2.ID))
		})
	})

	Describe("initial size zero", func() {
		It("publishes service_up=true immediately with no members", func() {
			em := newScenarioEntityManager()
			lr := newScenarioLocationResolver()
			cfg := &pool.Config{InitialSize: 0, InitialQuorumSize: -1, MemberSpec: &pool.MemberSpec{Name: "worker"}}
			ctrl := newScenarioController(cfg, em, lr)

			Expect(ctrl.Start(ctx, []pool.Location{"dc1"})).To(Succeed())
			up, ok := em.GetSensor(ctx, pool.EntityRef("scenario-cluster"), pool.SensorServiceUp)
			Expect(ok).To(BeTrue())
			Expect(up).To(Equal(true))
			Expect(ctrl.Cluster().CurrentSize()).To(Equal(0))
		})
	})

	Describe("resize invariants", func() {
		It("is idempotent and round-trips to empty", func() {
			em := newScenarioEntityManager()
			lr := newScenarioLocationResolver()
			cfg := &pool.Config{InitialSize: 0, InitialQuorumSize: -1, MemberSpec: &pool.MemberSpec{Name: "worker"}}
			ctrl := newScenarioController(cfg, em, lr)
			Expect(ctrl.Start(ctx, []pool.Location{"dc1"})).To(Succeed())

			size, err := ctrl.Resize(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(size).To(Equal(3))

			size, err = ctrl.Resize(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(size).To(Equal(3))

			_, err = ctrl.Resize(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ctrl.Cluster().Members).To(BeEmpty())
		})
	})

	Describe("stop", func() {
		It("empties members and reaches STOPPED", func() {
			em := newScenarioEntityManager()
			lr := newScenarioLocationResolver()
			cfg := &pool.Config{InitialSize: 3, InitialQuorumSize: -1, MemberSpec: &pool.MemberSpec{Name: "worker"}}
			ctrl := newScenarioController(cfg, em, lr)
			Expect(ctrl.Start(ctx, []pool.Location{"dc1"})).To(Succeed())

			Expect(ctrl.Stop(ctx)).To(Succeed())
			Expect(ctrl.Cluster().Members).To(BeEmpty())
			Expect(ctrl.Cluster().ExpectedState).To(Equal(pool.StateStopped))
		})
	})
})
