package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// fakeTask is a Task whose work runs once, lazily, the first time it is
// started (by Submit or a direct Await), mirroring the "submit starts
// async work, Await blocks for completion" shape of the real task
// framework closely enough for tests.
type fakeTask struct {
	label string
	work  func(ctx context.Context) error

	once sync.Once
	done chan struct{}
	err  error
}

func newFakeTask(label string, work func(ctx context.Context) error) *fakeTask {
	return &fakeTask{label: label, work: work, done: make(chan struct{})}
}

func (t *fakeTask) start(ctx context.Context) {
	t.once.Do(func() {
		go func() {
			t.err = t.work(ctx)
			close(t.done)
		}()
	})
}

func (t *fakeTask) Await(ctx context.Context) error {
	t.start(ctx)
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *fakeTask) Label() string { return t.label }

// fakeTaskRunner submits by simply starting the task's work immediately.
type fakeTaskRunner struct{}

func (fakeTaskRunner) Submit(ctx context.Context, t Task) Task {
	if ft, ok := t.(*fakeTask); ok {
		ft.start(ctx)
	}
	return t
}

// fakeEntity is the in-memory record fakeEntityManager keeps per created
// entity.
type fakeEntity struct {
	mu      sync.Mutex
	managed bool
	sensors map[string]any
}

// fakeEntityManager is an in-memory EntityManager for tests. StartResult
// and StopResult are optional hooks controlling per-call success/failure so
// tests can script partial-failure scenarios.
type fakeEntityManager struct {
	mu       sync.Mutex
	entities map[EntityRef]*fakeEntity
	counter  atomic.Int64

	StartResult func(loc Location, e EntityRef) error
	StopResult  func(e EntityRef) error

	// lastSpec and lastFlags record the arguments of the most recent
	// CreateChild call.
	lastSpec  MemberSpec
	lastFlags map[string]any
}

func newFakeEntityManager() *fakeEntityManager {
	return &fakeEntityManager{entities: make(map[EntityRef]*fakeEntity)}
}

func (m *fakeEntityManager) CreateChild(ctx context.Context, parent EntityRef, spec MemberSpec, loc Location, flags map[string]any) (EntityRef, error) {
	n := m.counter.Add(1)
	ref := EntityRef(fmt.Sprintf("member-%d", n))

	m.mu.Lock()
	m.entities[ref] = &fakeEntity{sensors: make(map[string]any)}
	m.lastSpec = spec
	m.lastFlags = flags
	m.mu.Unlock()
	return ref, nil
}

func (m *fakeEntityManager) Manage(ctx context.Context, e EntityRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.entities[e]
	if !ok {
		return fmt.Errorf("fake: no such entity %s", e)
	}
	ent.managed = true
	return nil
}

func (m *fakeEntityManager) Unmanage(ctx context.Context, e EntityRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.entities[e]
	if !ok {
		return nil
	}
	ent.managed = false
	return nil
}

func (m *fakeEntityManager) SetSensor(ctx context.Context, e EntityRef, key string, value any) error {
	m.mu.Lock()
	ent, ok := m.entities[e]
	if !ok {
		// Sensors may be published on entities the manager never created,
		// most notably the cluster itself.
		ent = &fakeEntity{sensors: make(map[string]any)}
		m.entities[e] = ent
	}
	m.mu.Unlock()
	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.sensors[key] = value
	return nil
}

func (m *fakeEntityManager) GetSensor(ctx context.Context, e EntityRef, key string) (any, bool) {
	m.mu.Lock()
	ent, ok := m.entities[e]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	ent.mu.Lock()
	defer ent.mu.Unlock()
	v, ok := ent.sensors[key]
	return v, ok
}

func (m *fakeEntityManager) StartTask(ctx context.Context, e EntityRef, loc Location) (Task, error) {
	return newFakeTask("start:"+string(e), func(ctx context.Context) error {
		if m.StartResult == nil {
			return nil
		}
		return m.StartResult(loc, e)
	}), nil
}

func (m *fakeEntityManager) StopTask(ctx context.Context, e EntityRef) (Task, error) {
	return newFakeTask("stop:"+string(e), func(ctx context.Context) error {
		if m.StopResult == nil {
			return nil
		}
		return m.StopResult(e)
	}), nil
}

func (m *fakeEntityManager) Resolve(ctx context.Context, id string) (EntityRef, bool) {
	ref := EntityRef(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.entities[ref]
	if !ok || !ent.managed {
		return "", false
	}
	return ref, true
}

func (m *fakeEntityManager) isManaged(e EntityRef) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.entities[e]
	return ok && ent.managed
}

// fakeLocationResolver is a LocationResolver backed by a static zone list
// and parent-chain map, configured per test.
type fakeLocationResolver struct {
	zones              []Location
	hasZones           bool
	parentChains       map[Location][]Location
	machineProvisioned map[Location]bool
}

func newFakeLocationResolver(zones ...Location) *fakeLocationResolver {
	return &fakeLocationResolver{
		zones:    zones,
		hasZones: len(zones) > 0,
	}
}

func (r *fakeLocationResolver) ResolveSingle(existing []Location, explicit []Location) (Location, error) {
	if len(explicit) > 1 {
		return "", ErrAmbiguousLocation
	}
	if len(explicit) == 1 {
		return explicit[0], nil
	}
	if len(existing) == 1 {
		return existing[0], nil
	}
	if len(existing) > 1 {
		return "", ErrAmbiguousLocation
	}
	return "", ErrNoLocation
}

func (r *fakeLocationResolver) HasAvailabilityZones(loc Location) bool { return r.hasZones }

func (r *fakeLocationResolver) SubLocationsByCount(loc Location, n int) ([]Location, error) {
	if n > len(r.zones) {
		return nil, ErrZoneCapacityExceeded
	}
	return append([]Location(nil), r.zones[:n]...), nil
}

func (r *fakeLocationResolver) SubLocationsByName(loc Location, names []string) ([]Location, error) {
	out := make([]Location, 0, len(names))
	for _, n := range names {
		out = append(out, Location(n))
	}
	return out, nil
}

func (r *fakeLocationResolver) AllSubLocations(loc Location) ([]Location, error) {
	return append([]Location(nil), r.zones...), nil
}

func (r *fakeLocationResolver) ParentChain(loc Location) []Location {
	if chain, ok := r.parentChains[loc]; ok {
		return chain
	}
	return []Location{loc}
}

func (r *fakeLocationResolver) IsMachineProvisioning(loc Location) bool {
	return r.machineProvisioned[loc]
}

// fakePolicy records Suspend/Resume calls for assertions.
type fakePolicy struct {
	mu       sync.Mutex
	suspends int
	resumes  int
}

func (p *fakePolicy) Suspend(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suspends++
}

func (p *fakePolicy) Resume(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumes++
}

func (p *fakePolicy) counts() (suspends, resumes int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.suspends, p.resumes
}
