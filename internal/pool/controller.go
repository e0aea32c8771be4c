package pool

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Controller orchestrates start/stop/resize/replace for one cluster. It is
// the single serialization point for resize mutations: Resize, ResizeByDelta,
// Grow, Shrink and ReplaceMember all run under mu, so concurrent callers are
// totally ordered by lock acquisition.
//
// Controller never creates entities, submits tasks, resolves locations or
// manages policies itself. It delegates to the EntityManager, TaskRunner,
// LocationResolver and Policy collaborators (collaborators.go).
type Controller struct {
	mu sync.Mutex

	cluster   *Cluster
	cfg       *Config
	em        EntityManager
	tasks     TaskRunner
	locations LocationResolver

	allocator     *MemberIDAllocator
	nodeFactory   *NodeFactory
	starter       *ParallelStarter
	removal       RemovalStrategy
	zonePlacement ZonePlacementStrategy
	zoneFailure   ZoneFailureDetector
	quarantine    *QuarantineGroup
	health        *HealthAggregator
	upQuorumCheck UpQuorumCheck
	metrics       Metrics

	// startProblem records the most recent error observed during Start,
	// cleared at the beginning of every Start call.
	startProblem error
}

// NewController wires a Controller for cluster using cfg's strategy/policy
// selections, resolved from the explicit registries in registry.go.
func NewController(cfg *Config, cluster *Cluster, em EntityManager, tasks TaskRunner, locations LocationResolver, allocator *MemberIDAllocator) (*Controller, error) {
	removal, ok := LookupRemovalStrategy(cfg.RemovalStrategyName)
	if !ok {
		return nil, fmt.Errorf("pool: unknown removal strategy %q", cfg.RemovalStrategyName)
	}
	zonePlacement, ok := LookupZonePlacementStrategy(cfg.ZonePlacementStrategyName)
	if !ok {
		return nil, fmt.Errorf("pool: unknown zone placement strategy %q", cfg.ZonePlacementStrategyName)
	}
	zoneFailure, ok := LookupZoneFailureDetector(cfg.ZoneFailureDetectorName, cfg.ZoneFailureThreshold)
	if !ok {
		return nil, fmt.Errorf("pool: unknown zone failure detector %q", cfg.ZoneFailureDetectorName)
	}

	upCheck := cfg.UpQuorumCheck
	explicitUpCheck := upCheck != nil
	if upCheck == nil {
		if cfg.InitialSize == 0 {
			upCheck = AtLeastOneUnlessEmpty
		} else {
			upCheck = AllMustBeUp
		}
	}

	if cluster.FailedSubLocations == nil {
		cluster.FailedSubLocations = make(map[Location]bool)
	}

	c := &Controller{
		cluster:       cluster,
		cfg:           cfg,
		em:            em,
		tasks:         tasks,
		locations:     locations,
		allocator:     allocator,
		removal:       removal,
		zonePlacement: zonePlacement,
		zoneFailure:   zoneFailure,
		quarantine:    NewQuarantineGroup(),
		upQuorumCheck: upCheck,
		metrics:       noopMetrics{},
	}
	c.nodeFactory = NewNodeFactory(cfg, em, allocator)
	c.starter = NewParallelStarter(tasks)

	period := time.Duration(cfg.HealthPeriodSeconds * float64(time.Second))
	c.health = NewHealthAggregator(period, c.healthSnapshot, c.publishClusterUp)

	// A cluster configured to start empty with no explicit quorum is up by
	// definition, so publish service_up immediately.
	if cfg.InitialSize == 0 && !explicitUpCheck {
		if err := em.SetSensor(context.Background(), EntityRef(cluster.ID), SensorServiceUp, true); err != nil {
			log.Errorf("cluster %s: publishing initial service_up: %v", cluster.ID, err)
		}
	}

	return c, nil
}

// SetMetrics installs m as the Controller's metrics observer. Passing nil
// reverts to a no-op observer.
func (c *Controller) SetMetrics(m Metrics) {
	if m == nil {
		m = noopMetrics{}
	}
	c.metrics = m
}

// QuarantineGroup exposes the controller's quarantine group for read-only
// inspection (e.g. cmd/poolctl status output, test assertions).
func (c *Controller) QuarantineGroup() *QuarantineGroup { return c.quarantine }

// StartProblem returns the error recorded by the most recent Start call,
// or nil if it completed cleanly. It is the problem indicator operators
// consult when a cluster is RUNNING but smaller than requested.
func (c *Controller) StartProblem() error { return c.startProblem }

// Cluster returns the cluster this Controller owns. Callers outside the
// mutex must treat the returned pointer as read-mostly: HealthAggregator
// and status reporting read it without locking.
func (c *Controller) Cluster() *Cluster { return c.cluster }

// healthSnapshot captures the state HealthAggregator needs without holding
// the resize mutex. Momentary inconsistency is acceptable; it self-corrects
// on the next poll.
func (c *Controller) healthSnapshot() healthSnapshot {
	return healthSnapshot{
		expectedState: c.cluster.ExpectedState,
		members:       append([]*Member(nil), c.cluster.Members...),
	}
}

// setExpectedState records a lifecycle transition and mirrors it to the
// service_state_actual sensor for external observers.
func (c *Controller) setExpectedState(ctx context.Context, state ExpectedState) {
	c.cluster.ExpectedState = state
	if err := c.em.SetSensor(ctx, EntityRef(c.cluster.ID), SensorServiceStateActual, string(state)); err != nil {
		log.Errorf("cluster %s: publishing service_state_actual: %v", c.cluster.ID, err)
	}
}

func (c *Controller) publishClusterUp(up bool) {
	if err := c.em.SetSensor(context.Background(), EntityRef(c.cluster.ID), SensorClusterOneAndAllMembersUp, up); err != nil {
		log.Errorf("cluster %s: publishing cluster_one_and_all_members_up: %v", c.cluster.ID, err)
	}
	c.metrics.SetClusterUp(up)
}

// Start resolves the cluster's location, enumerates sub-locations in zone
// mode, and resizes to the configured initial size. It fails with a
// QuorumNotReachedError when fewer than the initial quorum of members came
// up, and logs a warning (but succeeds) when the result is at or above
// quorum but below the initial size.
func (c *Controller) Start(ctx context.Context, explicitLocations []Location) (err error) {
	var existing []Location
	if c.cluster.Location != "" {
		existing = []Location{c.cluster.Location}
	}
	loc, rerr := c.locations.ResolveSingle(existing, explicitLocations)
	if rerr != nil {
		return rerr
	}
	c.cluster.Location = loc
	c.startProblem = nil
	c.setExpectedState(ctx, StateStarting)

	// RUNNING is set and the health feed and attached policies are resumed
	// regardless of whether start below succeeded; c.startProblem records
	// the error separately.
	defer func() {
		c.setExpectedState(ctx, StateRunning)
		c.health.Start(ctx)
		for _, p := range c.cluster.Policies {
			p.Resume(ctx)
		}
	}()

	if c.cfg.EnableAvailabilityZones {
		subs, zerr := c.findSubLocations(ctx)
		if zerr != nil {
			c.startProblem = zerr
			return zerr
		}
		c.cluster.SubLocations = subs
		if serr := c.em.SetSensor(ctx, EntityRef(c.cluster.ID), SensorSubLocations, subs); serr != nil {
			log.Errorf("cluster %s: publishing sub_locations: %v", c.cluster.ID, serr)
		}
	}

	size, resizeErr := c.Resize(ctx, c.cfg.InitialSize)
	if resizeErr != nil {
		c.startProblem = resizeErr
	}

	quorum := c.cfg.resolvedInitialQuorumSize()
	if size < quorum {
		cause := resizeErr
		if cause == nil {
			cause = c.startProblem
		}
		qerr := &QuorumNotReachedError{CurrentSize: size, QuorumSize: quorum, Cause: cause}
		c.startProblem = qerr
		return qerr
	}
	if size < c.cfg.InitialSize {
		log.Warningf("cluster %s: reached quorum size %d, below initial size %d; continuing", c.cluster.ID, size, c.cfg.InitialSize)
	}
	return nil
}

// findSubLocations enumerates the cluster's availability zones. Validation
// happens before any location-layer call is made.
func (c *Controller) findSubLocations(ctx context.Context) ([]Location, error) {
	if !c.locations.HasAvailabilityZones(c.cluster.Location) {
		return nil, ErrNoLocation
	}

	if len(c.cfg.AvailabilityZoneNames) > 0 {
		return c.locations.SubLocationsByName(c.cluster.Location, c.cfg.AvailabilityZoneNames)
	}
	if c.cfg.NumAvailabilityZones > 0 {
		return c.locations.SubLocationsByCount(c.cluster.Location, c.cfg.NumAvailabilityZones)
	}
	return c.locations.AllSubLocations(c.cluster.Location)
}

// Stop drains the cluster to size zero and tears down the health feed.
// The initial shrink-to-zero is a separate, short-lived mutex acquisition
// from the final Resize(0), not one critical section spanning both. The
// shrink waits for any resize that already holds the mutex; a concurrent
// Start may resize between the two acquisitions, and Stop's second
// acquisition (Resize(0)) is what actually reconciles the cluster to empty.
func (c *Controller) Stop(ctx context.Context) (err error) {
	c.setExpectedState(ctx, StateStopping)
	for _, p := range c.cluster.Policies {
		p.Suspend(ctx)
	}

	defer c.health.Stop()
	defer func() {
		if err != nil {
			c.setExpectedState(ctx, StateOnFire)
		}
	}()

	if _, serr := c.Shrink(ctx, -c.cluster.CurrentSize()); serr != nil {
		log.Errorf("cluster %s: shrink-to-zero during stop: %v", c.cluster.ID, serr)
	}

	if _, rerr := c.Resize(ctx, 0); rerr != nil {
		return rerr
	}

	c.quarantine.StopAll(ctx, c.em)

	c.setExpectedState(ctx, StateStopped)
	return nil
}

// Restart is intentionally unsupported. Stop and Start the cluster instead.
func (c *Controller) Restart(ctx context.Context) error {
	return ErrNotSupported
}

// Resize drives current size toward desired, returning the resulting
// current size.
func (c *Controller) Resize(ctx context.Context, desired int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delta := desired - c.cluster.CurrentSize()
	_, err := c.resizeByDeltaLocked(ctx, delta)
	return c.cluster.CurrentSize(), err
}

// ResizeByDelta grows or shrinks by exactly delta; zero is a no-op.
func (c *Controller) ResizeByDelta(ctx context.Context, delta int) ([]*Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resizeByDeltaLocked(ctx, delta)
}

// Grow adds exactly delta members, delta must be > 0.
func (c *Controller) Grow(ctx context.Context, delta int) ([]*Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.growLocked(ctx, delta)
}

// Shrink removes members, delta must be <= 0.
func (c *Controller) Shrink(ctx context.Context, delta int) ([]*Member, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shrinkLocked(ctx, delta)
}

func (c *Controller) resizeByDeltaLocked(ctx context.Context, delta int) ([]*Member, error) {
	desired := c.cluster.CurrentSize() + delta
	if desired < 0 {
		desired = 0
	}
	c.cluster.DesiredSize = desired
	switch {
	case delta > 0:
		return c.growLocked(ctx, delta)
	case delta < 0:
		return c.shrinkLocked(ctx, delta)
	default:
		c.publishSizes()
		return nil, nil
	}
}

// growLocked chooses delta locations by precedence (member spec locations,
// then zone placement, then the cluster's single location) and adds one
// member in each.
func (c *Controller) growLocked(ctx context.Context, delta int) ([]*Member, error) {
	locs, err := c.locationsForGrow(ctx, delta)
	if err != nil {
		c.metrics.ObserveResize("grow", "failure")
		return nil, err
	}
	result, err := c.addInEachLocationLocked(ctx, locs, nil)
	c.recomputeServiceUp(ctx)
	if err != nil {
		c.metrics.ObserveResize("grow", "failure")
	} else {
		c.metrics.ObserveResize("grow", "success")
	}
	c.publishSizes()
	return result.Started, err
}

func (c *Controller) locationsForGrow(ctx context.Context, delta int) ([]Location, error) {
	spec := c.cfg.MemberSpec
	if len(c.cluster.Members) == 0 && c.cfg.FirstMemberSpec != nil {
		spec = c.cfg.FirstMemberSpec
	}

	if spec != nil && len(spec.Locations) > 0 {
		if c.cfg.EnableAvailabilityZones {
			log.Warningf("cluster %s: member spec carries explicit locations; suppressing availability-zone placement", c.cluster.ID)
		}
		loc := spec.Locations[0]
		locs := make([]Location, delta)
		for i := range locs {
			locs[i] = loc
		}
		return locs, nil
	}

	if c.cfg.EnableAvailabilityZones {
		available := c.getNonFailedSubLocations(ctx)
		if len(available) == 0 {
			return nil, ErrZoneCapacityExceeded
		}
		locs, err := c.zonePlacement.LocationsForAdditions(c.membersByLocation(), available, delta)
		if err != nil {
			return nil, err
		}
		if len(locs) != delta {
			return nil, &PlacementInvariantError{Expected: delta, Actual: len(locs)}
		}
		return locs, nil
	}

	locs := make([]Location, delta)
	for i := range locs {
		locs[i] = c.cluster.Location
	}
	return locs, nil
}

// getNonFailedSubLocations filters FailedSubLocations out of SubLocations,
// recomputing the failed set and warning on newly failed / newly recovered
// zones.
func (c *Controller) getNonFailedSubLocations(ctx context.Context) []Location {
	prevFailed := c.cluster.FailedSubLocations
	failedNow := make(map[Location]bool, len(c.cluster.SubLocations))
	var available []Location

	for _, loc := range c.cluster.SubLocations {
		if c.zoneFailure.HasFailed(loc) {
			failedNow[loc] = true
			if !prevFailed[loc] {
				log.Warningf("cluster %s: zone %s newly classified as failed", c.cluster.ID, loc)
			}
		} else {
			available = append(available, loc)
			if prevFailed[loc] {
				log.Warningf("cluster %s: zone %s has recovered", c.cluster.ID, loc)
			}
		}
	}

	c.cluster.FailedSubLocations = failedNow
	if err := c.em.SetSensor(ctx, EntityRef(c.cluster.ID), SensorFailedSubLocations, failedNow); err != nil {
		log.Errorf("cluster %s: publishing failed_sub_locations: %v", c.cluster.ID, err)
	}
	return available
}

// shrinkLocked clamps an over-large shrink, picks victims, removes them
// from Members before stopping them, stops all startable victims in
// parallel, and unmanages every victim regardless of stop outcome.
func (c *Controller) shrinkLocked(ctx context.Context, delta int) (victims []*Member, err error) {
	current := c.cluster.CurrentSize()
	if -delta > current {
		log.Warningf("cluster %s: shrink by %d exceeds current size %d; clamping", c.cluster.ID, -delta, current)
		delta = -current
	}
	n := -delta
	victims, err = c.pickAndRemoveMembersLocked(n)
	if err != nil {
		c.metrics.ObserveResize("shrink", "failure")
		return nil, err
	}

	defer func() {
		for _, m := range victims {
			if uerr := c.em.Unmanage(ctx, m.ID); uerr != nil {
				log.Errorf("cluster %s: unmanaging member %s: %v", c.cluster.ID, m.ID, uerr)
			}
		}
		c.recomputeServiceUp(ctx)
		c.metrics.ObserveResize("shrink", "success")
		c.publishSizes()
	}()

	var wg sync.WaitGroup
	for _, m := range victims {
		if !m.IsStartable {
			continue
		}
		wg.Add(1)
		go func(m *Member) {
			defer wg.Done()
			task, terr := c.em.StopTask(ctx, m.ID)
			if terr != nil {
				log.Errorf("cluster %s: building stop task for member %s: %v", c.cluster.ID, m.ID, terr)
				return
			}
			if aerr := task.Await(ctx); aerr != nil {
				log.Errorf("cluster %s: member %s failed to stop during shrink: %v", c.cluster.ID, m.ID, aerr)
			}
		}(m)
	}
	wg.Wait()

	return victims, nil
}

// pickAndRemoveMembersLocked selects n members via ZonePlacementStrategy
// (zone mode) or by repeatedly applying RemovalStrategy. Each chosen member
// is removed from Members immediately, before anything is stopped.
func (c *Controller) pickAndRemoveMembersLocked(n int) ([]*Member, error) {
	if n <= 0 {
		return nil, nil
	}

	var chosen []*Member
	if c.cfg.EnableAvailabilityZones && len(c.cluster.SubLocations) > 0 {
		picked, err := c.zonePlacement.EntitiesToRemove(c.membersByLocation(), n)
		if err != nil {
			return nil, err
		}
		if len(picked) != n {
			return nil, &PlacementInvariantError{Expected: n, Actual: len(picked)}
		}
		chosen = picked
	} else {
		remaining := append([]*Member(nil), c.cluster.Members...)
		for i := 0; i < n; i++ {
			victim := c.removal(remaining)
			if victim == nil {
				break
			}
			chosen = append(chosen, victim)
			remaining = removeMemberFromSlice(remaining, victim)
		}
		if len(chosen) != n {
			return nil, &PlacementInvariantError{Expected: n, Actual: len(chosen)}
		}
	}

	for _, m := range chosen {
		if idx := c.cluster.memberIndex(m.ID); idx >= 0 {
			c.cluster.removeMemberAt(idx)
		}
	}
	return chosen, nil
}

func removeMemberFromSlice(members []*Member, victim *Member) []*Member {
	out := make([]*Member, 0, len(members))
	for _, m := range members {
		if m.ID != victim.ID {
			out = append(out, m)
		}
	}
	return out
}

// membersByLocation groups the cluster's current members by their primary
// location, for consumption by ZonePlacementStrategy.
func (c *Controller) membersByLocation() map[Location][]*Member {
	out := make(map[Location][]*Member)
	for _, m := range c.cluster.Members {
		loc := c.cluster.Location
		if len(m.Locations) > 0 {
			loc = m.Locations[0]
		}
		out[loc] = append(out[loc], m)
	}
	return out
}

// GrowResult carries addInEachLocation's success set. A non-nil error
// returned alongside it is a masked aggregate of the per-member failures:
// callers may inspect or ignore it, since partial success is an expected
// outcome, not necessarily a failure of the enclosing operation.
type GrowResult struct {
	Started []*Member
}

// addInEachLocationLocked mints one node per location, builds start tasks
// for startable members, fans them out via ParallelStarter, records
// outcomes with ZoneFailureDetector in zone mode, and partitions the
// results into successes (returned) and failures (either quarantined or
// discarded, per cfg.QuarantineFailedEntities).
func (c *Controller) addInEachLocationLocked(ctx context.Context, locs []Location, flags map[string]any) (GrowResult, error) {
	minted := make([]*Member, 0, len(locs))
	for _, loc := range locs {
		m, err := c.nodeFactory.AddNode(ctx, c.cluster, loc, flags)
		if err != nil {
			return GrowResult{Started: minted}, err
		}
		minted = append(minted, m)
	}

	tasks := make(map[*Member]Task, len(minted))
	for _, m := range minted {
		if !m.IsStartable {
			continue
		}
		loc := c.memberLocation(m)
		task, err := c.em.StartTask(ctx, m.ID, loc)
		if err != nil {
			return GrowResult{Started: minted}, err
		}
		tasks[m] = task
	}

	results, err := c.starter.StartAll(ctx, tasks)
	if err != nil {
		return GrowResult{}, err
	}

	var started []*Member
	byMember := make(map[EntityRef]error)

	for _, m := range minted {
		startErr, attempted := results[m]
		loc := c.memberLocation(m)

		if !attempted || startErr == nil {
			m.ServiceUp = ServiceUpTrue
			if serr := c.em.SetSensor(ctx, m.ID, SensorServiceUp, true); serr != nil {
				log.Errorf("cluster %s: publishing service_up for member %s: %v", c.cluster.ID, m.ID, serr)
			}
			started = append(started, m)
			if c.cfg.EnableAvailabilityZones {
				c.zoneFailure.OnStartupSuccess(loc, m.ID)
			}
			continue
		}

		m.ServiceUp = ServiceUpFalse
		byMember[m.ID] = startErr
		if c.cfg.EnableAvailabilityZones {
			c.zoneFailure.OnStartupFailure(loc, m.ID, startErr)
		}

		if idx := c.cluster.memberIndex(m.ID); idx >= 0 {
			c.cluster.removeMemberAt(idx)
		}

		if c.cfg.QuarantineFailedEntities {
			c.quarantine.Add(m, startErr)
			if serr := c.em.SetSensor(ctx, m.ID, SensorEntityQuarantined, true); serr != nil {
				log.Errorf("cluster %s: publishing entity_quarantined for %s: %v", c.cluster.ID, m.ID, serr)
			}
			if serr := c.em.SetSensor(ctx, EntityRef(c.cluster.ID), SensorQuarantineGroup, c.quarantine.Len()); serr != nil {
				log.Errorf("cluster %s: publishing quarantine_group size: %v", c.cluster.ID, serr)
			}
			log.Warningf("cluster %s: member %s quarantined after start failure: %v", c.cluster.ID, m.ID, startErr)
		} else {
			if uerr := c.em.Unmanage(ctx, m.ID); uerr != nil {
				log.Errorf("cluster %s: unmanaging failed member %s: %v", c.cluster.ID, m.ID, uerr)
			}
			log.Warningf("cluster %s: member %s discarded after start failure: %v", c.cluster.ID, m.ID, startErr)
		}
	}

	result := GrowResult{Started: started}
	if len(byMember) > 0 {
		return result, &StartErrors{ByMember: byMember}
	}
	return result, nil
}

func (c *Controller) memberLocation(m *Member) Location {
	if len(m.Locations) > 0 {
		return m.Locations[0]
	}
	return c.cluster.Location
}

// recomputeServiceUp aggregates service_up over Members only (excluding the
// quarantine group) through the configured UpQuorumCheck.
func (c *Controller) recomputeServiceUp(ctx context.Context) {
	size := len(c.cluster.Members)
	up := 0
	for _, m := range c.cluster.Members {
		if m.ServiceUp == ServiceUpTrue {
			up++
		}
	}
	result := c.upQuorumCheck(up, size)
	if err := c.em.SetSensor(ctx, EntityRef(c.cluster.ID), SensorServiceUp, result); err != nil {
		log.Errorf("cluster %s: publishing service_up: %v", c.cluster.ID, err)
	}
}

func (c *Controller) publishSizes() {
	c.metrics.SetSizes(c.cluster.CurrentSize(), c.cluster.DesiredSize, c.quarantine.Len())
}

// ReplaceMember mints a replacement in the old member's inferred location,
// and only once it has started does the old member get stopped and
// unmanaged. A replacement that fails to start leaves the old member in
// place; a stop failure after the replacement is live surfaces as a
// StopFailedError alongside the new member's id.
func (c *Controller) ReplaceMember(ctx context.Context, memberID EntityRef) (EntityRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	resolved, ok := c.em.Resolve(ctx, string(memberID))
	if !ok {
		return "", ErrNoSuchMember
	}
	idx := c.cluster.memberIndex(resolved)
	if idx < 0 {
		return "", ErrNoSuchMember
	}
	old := c.cluster.Members[idx]

	loc := c.replacementLocationLocked(old)

	result, err := c.addInEachLocationLocked(ctx, []Location{loc}, nil)
	if len(result.Started) == 0 {
		c.metrics.ObserveResize("replace", "failure")
		return "", &GrowFailedError{Cause: err}
	}
	newMember := result.Started[0]

	var stopErr error
	stopTask, terr := c.em.StopTask(ctx, old.ID)
	if terr != nil {
		stopErr = terr
	} else {
		stopErr = stopTask.Await(ctx)
	}

	if oldIdx := c.cluster.memberIndex(old.ID); oldIdx >= 0 {
		c.cluster.removeMemberAt(oldIdx)
	}
	if uerr := c.em.Unmanage(ctx, old.ID); uerr != nil {
		log.Errorf("cluster %s: unmanaging replaced member %s: %v", c.cluster.ID, old.ID, uerr)
	}

	c.recomputeServiceUp(ctx)
	c.publishSizes()

	if stopErr != nil {
		c.metrics.ObserveResize("replace", "failure")
		return newMember.ID, &StopFailedError{Member: old.ID, Cause: stopErr}
	}
	c.metrics.ObserveResize("replace", "success")
	return newMember.ID, nil
}

// replacementLocationLocked infers where a replacement member should go:
// the first ancestor of one of old's locations that is a current
// sub-location, falling back to the first sub-location when old carried no
// locations at all, then to a machine-provisioning location among old's,
// then to old's first location. Outside zone mode the cluster's single
// location is always used.
func (c *Controller) replacementLocationLocked(old *Member) Location {
	if !c.cfg.EnableAvailabilityZones || len(c.cluster.SubLocations) == 0 {
		return c.cluster.Location
	}

	subSet := make(map[Location]bool, len(c.cluster.SubLocations))
	for _, s := range c.cluster.SubLocations {
		subSet[s] = true
	}

	for _, oldLoc := range old.Locations {
		for _, ancestor := range c.locations.ParentChain(oldLoc) {
			if subSet[ancestor] {
				return ancestor
			}
		}
	}

	if len(old.Locations) == 0 {
		return c.cluster.SubLocations[0]
	}

	for _, l := range old.Locations {
		if c.locations.IsMachineProvisioning(l) {
			return l
		}
	}
	return old.Locations[0]
}
