package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dreamware/dynclust/internal/pool"
)

// inMemoryEntity is one fake entity's state: managed flag plus sensors.
type inMemoryEntity struct {
	mu      sync.Mutex
	managed bool
	sensors map[string]any
}

// inMemoryEntityManager is a standalone stand-in for the real entity
// management layer, enough to drive a Controller through its full
// lifecycle without any external services. Starting and stopping a member
// is simulated: both always succeed immediately.
type inMemoryEntityManager struct {
	mu       sync.Mutex
	entities map[pool.EntityRef]*inMemoryEntity
}

func newInMemoryEntityManager() *inMemoryEntityManager {
	return &inMemoryEntityManager{entities: make(map[pool.EntityRef]*inMemoryEntity)}
}

// CreateChild mints a uuid-based entity reference the way the real entity
// layer would hand back an opaque identity, rather than a predictable
// counter.
func (m *inMemoryEntityManager) CreateChild(ctx context.Context, parent pool.EntityRef, spec pool.MemberSpec, loc pool.Location, flags map[string]any) (pool.EntityRef, error) {
	ref := pool.EntityRef(fmt.Sprintf("%s-%s", spec.Name, uuid.NewString()))

	m.mu.Lock()
	m.entities[ref] = &inMemoryEntity{sensors: make(map[string]any)}
	m.mu.Unlock()
	return ref, nil
}

func (m *inMemoryEntityManager) Manage(ctx context.Context, e pool.EntityRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.entities[e]
	if !ok {
		return fmt.Errorf("poolctl: no such entity %s", e)
	}
	ent.managed = true
	return nil
}

func (m *inMemoryEntityManager) Unmanage(ctx context.Context, e pool.EntityRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ent, ok := m.entities[e]; ok {
		ent.managed = false
	}
	return nil
}

func (m *inMemoryEntityManager) SetSensor(ctx context.Context, e pool.EntityRef, key string, value any) error {
	m.mu.Lock()
	ent, ok := m.entities[e]
	if !ok {
		// Sensors may be published on entities the manager never created,
		// most notably the cluster itself.
		ent = &inMemoryEntity{sensors: make(map[string]any)}
		m.entities[e] = ent
	}
	m.mu.Unlock()
	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.sensors[key] = value
	return nil
}

func (m *inMemoryEntityManager) GetSensor(ctx context.Context, e pool.EntityRef, key string) (any, bool) {
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

func (m *inMemoryEntityManager) StartTask(ctx context.Context, e pool.EntityRef, loc pool.Location) (pool.Task, error) {
	return newInstantTask("start:"+string(e), nil), nil
}

func (m *inMemoryEntityManager) StopTask(ctx context.Context, e pool.EntityRef) (pool.Task, error) {
	return newInstantTask("stop:"+string(e), nil), nil
}

func (m *inMemoryEntityManager) Resolve(ctx context.Context, id string) (pool.EntityRef, bool) {
	ref := pool.EntityRef(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.entities[ref]
	if !ok || !ent.managed {
		return "", false
	}
	return ref, true
}

// instantTask is a Task that is already complete by the time it is
// created, standing in for the real task framework.
type instantTask struct {
	label string
	err   error
}

func newInstantTask(label string, err error) *instantTask {
	return &instantTask{label: label, err: err}
}

func (t *instantTask) Await(ctx context.Context) error { return t.err }
func (t *instantTask) Label() string                   { return t.label }

// passthroughTaskRunner submits by returning the task unchanged; every
// instantTask is already done.
type passthroughTaskRunner struct{}

func (passthroughTaskRunner) Submit(ctx context.Context, t pool.Task) pool.Task { return t }

// staticLocationResolver is a LocationResolver over a fixed parent
// location and a fixed list of availability zones, standing in for the
// real location layer.
type staticLocationResolver struct {
	zones []pool.Location
}

func newStaticLocationResolver(zones []string) *staticLocationResolver {
	locs := make([]pool.Location, len(zones))
	for i, z := range zones {
		locs[i] = pool.Location(z)
	}
	return &staticLocationResolver{zones: locs}
}

func (r *staticLocationResolver) ResolveSingle(existing []pool.Location, explicit []pool.Location) (pool.Location, error) {
	if len(explicit) > 1 {
		return "", pool.ErrAmbiguousLocation
	}
	if len(explicit) == 1 {
		return explicit[0], nil
	}
	if len(existing) == 1 {
		return existing[0], nil
	}
	if len(existing) > 1 {
		return "", pool.ErrAmbiguousLocation
	}
	return "", pool.ErrNoLocation
}

func (r *staticLocationResolver) HasAvailabilityZones(loc pool.Location) bool {
	return len(r.zones) > 0
}

func (r *staticLocationResolver) SubLocationsByCount(loc pool.Location, n int) ([]pool.Location, error) {
	if n > len(r.zones) {
		return nil, pool.ErrZoneCapacityExceeded
	}
	return append([]pool.Location(nil), r.zones[:n]...), nil
}

func (r *staticLocationResolver) SubLocationsByName(loc pool.Location, names []string) ([]pool.Location, error) {
	out := make([]pool.Location, 0, len(names))
	for _, n := range names {
		out = append(out, pool.Location(n))
	}
	return out, nil
}

func (r *staticLocationResolver) AllSubLocations(loc pool.Location) ([]pool.Location, error) {
	return append([]pool.Location(nil), r.zones...), nil
}

func (r *staticLocationResolver) ParentChain(loc pool.Location) []pool.Location {
	return []pool.Location{loc}
}

func (r *staticLocationResolver) IsMachineProvisioning(loc pool.Location) bool { return false }

// noopPolicy implements pool.Policy with no effect, for demo runs that
// don't attach a real policy engine.
type noopPolicy struct{}

func (noopPolicy) Suspend(ctx context.Context) {}
func (noopPolicy) Resume(ctx context.Context)  {}
