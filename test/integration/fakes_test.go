package integration_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dreamware/dynclust/internal/pool"
)

// These fakes mirror cmd/poolctl's in-memory collaborators, duplicated
// here because poolctl is an unexported main package: the scenario suite
// needs its own instance of the same external collaborators (entity
// manager, task runner, location resolver).

type scenarioEntity struct {
	mu      sync.Mutex
	managed bool
	sensors map[string]any
}

type scenarioEntityManager struct {
	mu       sync.Mutex
	entities map[pool.EntityRef]*scenarioEntity
	counter  atomic.Int64

	StartFails map[pool.Location]bool

	// FailFirstN, when > 0, makes exactly that many of the earliest
	// StartTask calls (across any location) fail, regardless of
	// StartFails. Consumed atomically so concurrent start attempts each
	// see a consistent decision.
	FailFirstN atomic.Int64
}

func newScenarioEntityManager() *scenarioEntityManager {
	return &scenarioEntityManager{
		entities:   make(map[pool.EntityRef]*scenarioEntity),
		StartFails: make(map[pool.Location]bool),
	}
}

func (m *scenarioEntityManager) CreateChild(ctx context.Context, parent pool.EntityRef, spec pool.MemberSpec, loc pool.Location, flags map[string]any) (pool.EntityRef, error) {
	n := m.counter.Add(1)
	ref := pool.EntityRef(fmt.Sprintf("%s-%d", spec.Name, n))
	m.mu.Lock()
	m.entities[ref] = &scenarioEntity{sensors: make(map[string]any)}
	m.mu.Unlock()
	return ref, nil
}

func (m *scenarioEntityManager) Manage(ctx context.Context, e pool.EntityRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.entities[e]
	if !ok {
		return fmt.Errorf("scenario: no such entity %s", e)
	}
	ent.managed = true
	return nil
}

func (m *scenarioEntityManager) Unmanage(ctx context.Context, e pool.EntityRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ent, ok := m.entities[e]; ok {
		ent.managed = false
	}
	return nil
}

func (m *scenarioEntityManager) SetSensor(ctx context.Context, e pool.EntityRef, key string, value any) error {
	m.mu.Lock()
	ent, ok := m.entities[e]
	if !ok {
		// Sensors may be published on entities the manager never created,
		// most notably the cluster itself.
		ent = &scenarioEntity{sensors: make(map[string]any)}
		m.entities[e] = ent
	}
	m.mu.Unlock()
	ent.mu.Lock()
	defer ent.mu.Unlock()
	ent.sensors[key] = value
	return nil
}

func (m *scenarioEntityManager) GetSensor(ctx context.Context, e pool.EntityRef, key string) (any, bool) {
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

func (m *scenarioEntityManager) StartTask(ctx context.Context, e pool.EntityRef, loc pool.Location) (pool.Task, error) {
	fails := m.StartFails[loc]
	if !fails {
		for {
			remaining := m.FailFirstN.Load()
			if remaining <= 0 {
				break
			}
			if m.FailFirstN.CompareAndSwap(remaining, remaining-1) {
				fails = true
				break
			}
		}
	}
	return scenarioTask{label: "start:" + string(e), fails: fails, loc: loc}, nil
}

func (m *scenarioEntityManager) StopTask(ctx context.Context, e pool.EntityRef) (pool.Task, error) {
	return scenarioTask{label: "stop:" + string(e)}, nil
}

func (m *scenarioEntityManager) Resolve(ctx context.Context, id string) (pool.EntityRef, bool) {
	ref := pool.EntityRef(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.entities[ref]
	if !ok || !ent.managed {
		return "", false
	}
	return ref, true
}

type scenarioTask struct {
	label string
	fails bool
	loc   pool.Location
}

func (t scenarioTask) Await(ctx context.Context) error {
	if t.fails {
		return fmt.Errorf("scenario: start failed at %s", t.loc)
	}
	return nil
}

func (t scenarioTask) Label() string { return t.label }

type scenarioTaskRunner struct{}

func (scenarioTaskRunner) Submit(ctx context.Context, t pool.Task) pool.Task { return t }

type scenarioLocationResolver struct {
	zones []pool.Location
}

func newScenarioLocationResolver(zones ...pool.Location) *scenarioLocationResolver {
	return &scenarioLocationResolver{zones: zones}
}

func (r *scenarioLocationResolver) ResolveSingle(existing []pool.Location, explicit []pool.Location) (pool.Location, error) {
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

func (r *scenarioLocationResolver) HasAvailabilityZones(loc pool.Location) bool { return len(r.zones) > 0 }

func (r *scenarioLocationResolver) SubLocationsByCount(loc pool.Location, n int) ([]pool.Location, error) {
	if n > len(r.zones) {
		return nil, pool.ErrZoneCapacityExceeded
	}
	return append([]pool.Location(nil), r.zones[:n]...), nil
}

func (r *scenarioLocationResolver) SubLocationsByName(loc pool.Location, names []string) ([]pool.Location, error) {
	out := make([]pool.Location, 0, len(names))
	for _, n := range names {
		out = append(out, pool.Location(n))
	}
	return out, nil
}

func (r *scenarioLocationResolver) AllSubLocations(loc pool.Location) ([]pool.Location, error) {
	return append([]pool.Location(nil), r.zones...), nil
}

func (r *scenarioLocationResolver) ParentChain(loc pool.Location) []pool.Location {
	return []pool.Location{loc}
}

func (r *scenarioLocationResolver) IsMachineProvisioning(loc pool.Location) bool { return false }
