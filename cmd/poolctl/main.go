// Command poolctl drives a pool.Controller through a full start/resize/stop
// lifecycle from a YAML pool definition, using in-memory stand-ins for the
// external collaborators (entity manager, task runner, location resolver,
// policy engine). It is illustrative wiring for the controller, not a
// production entity or blueprint layer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/op/go-logging"

	"github.com/dreamware/dynclust/internal/metrics"
	"github.com/dreamware/dynclust/internal/pool"
	"github.com/dreamware/dynclust/internal/sensorstore"
)

var log = logging.MustGetLogger("poolctl")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "poolctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	fc, err := loadFileConfig(flags.configPath)
	if err != nil {
		return err
	}
	applyFlags(fc, flags)

	if fc.ClusterID == "" {
		fc.ClusterID = "poolctl-demo"
	}
	if fc.MemberName == "" {
		fc.MemberName = "worker"
	}
	if fc.Pool.MemberSpec == nil {
		fc.Pool.MemberSpec = &pool.MemberSpec{Name: fc.MemberName}
	}

	store, err := sensorstore.Open(os.TempDir() + "/poolctl-" + fc.ClusterID)
	if err != nil {
		return fmt.Errorf("opening sensor store: %w", err)
	}

	cluster := &pool.Cluster{
		ID:          fc.ClusterID,
		DisplayName: fc.DisplayName,
		Location:    pool.Location(fc.Location),
		Policies:    []pool.Policy{noopPolicy{}},
	}

	em := newInMemoryEntityManager()
	allocator := pool.NewMemberIDAllocator(store, fc.ClusterID)
	locations := newStaticLocationResolver(fc.Zones)

	ctrl, err := pool.NewController(&fc.Pool, cluster, em, passthroughTaskRunner{}, locations, allocator)
	if err != nil {
		return fmt.Errorf("constructing controller: %w", err)
	}
	ctrl.SetMetrics(metrics.NewRecorder(fc.ClusterID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("starting cluster %s (initial_size=%d)", cluster.ID, fc.Pool.InitialSize)
	if err := ctrl.Start(ctx, nil); err != nil {
		log.Warningf("start reported a problem: %v", err)
	}
	printStatus(ctrl)

	if flags.growBy > 0 {
		if _, err := ctrl.Grow(ctx, flags.growBy); err != nil {
			log.Errorf("grow by %d failed: %v", flags.growBy, err)
		}
		printStatus(ctrl)
	}
	if flags.shrinkBy > 0 {
		if _, err := ctrl.Shrink(ctx, -flags.shrinkBy); err != nil {
			log.Errorf("shrink by %d failed: %v", flags.shrinkBy, err)
		}
		printStatus(ctrl)
	}

	log.Info("running; send SIGINT/SIGTERM to stop")
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("stopping")
	if err := ctrl.Stop(stopCtx); err != nil {
		return fmt.Errorf("stopping cluster: %w", err)
	}
	printStatus(ctrl)
	return nil
}

func printStatus(ctrl *pool.Controller) {
	c := ctrl.Cluster()
	fmt.Printf("cluster %s: state=%s size=%d quarantined=%d\n",
		c.ID, c.ExpectedState, c.CurrentSize(), ctrl.QuarantineGroup().Len())
	for _, m := range c.Members {
		fmt.Printf("  member %s cluster_member_id=%d locations=%v\n", m.ID, m.ClusterMemberID, m.Locations)
	}
}
