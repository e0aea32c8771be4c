package pool

import "context"

// Task is a handle to an asynchronous unit of work submitted through a
// TaskRunner: block-until-done with the error surfaced, plus a human label
// for logging.
type Task interface {
	// Await blocks until the task completes or ctx is done, returning the
	// task's error (nil on success).
	Await(ctx context.Context) error
	// Label is a short human-readable description, used in logging only.
	Label() string
}

// TaskRunner is the subset of the external task execution framework the
// controller needs. The real framework offers much more; we only consume
// what ParallelStarter needs.
type TaskRunner interface {
	// Submit schedules t to run and returns immediately; the returned Task
	// is t itself or a handle wrapping it, depending on the implementation.
	Submit(ctx context.Context, t Task) Task
}

// EntityManager is the subset of the entity/management layer the
// controller needs: creating and registering children, reading/writing
// sensors, and building start/stop tasks. The real entity model owns
// parent/child linkage, lifecycle and identity.
type EntityManager interface {
	// CreateChild instantiates a new entity from spec as a child of parent
	// at loc, applying flags (which must include cluster_member_id).
	CreateChild(ctx context.Context, parent EntityRef, spec MemberSpec, loc Location, flags map[string]any) (EntityRef, error)
	// Manage registers e with the management layer so it becomes a live,
	// observable entity. A member is only added to Cluster.Members after it
	// has been registered.
	Manage(ctx context.Context, e EntityRef) error
	// Unmanage unregisters e. Idempotent: unmanaging an already-unmanaged
	// entity is not an error.
	Unmanage(ctx context.Context, e EntityRef) error
	// SetSensor publishes a sensor value visible to external observers.
	SetSensor(ctx context.Context, e EntityRef, key string, value any) error
	// GetSensor reads a sensor value, returning ok=false if unset.
	GetSensor(ctx context.Context, e EntityRef, key string) (value any, ok bool)
	// StartTask returns a Task that, when awaited, starts e at loc. Only
	// called for members whose IsStartable flag is true.
	StartTask(ctx context.Context, e EntityRef, loc Location) (Task, error)
	// StopTask returns a Task that stops e. Only called for startable
	// members.
	StopTask(ctx context.Context, e EntityRef) (Task, error)
	// Resolve looks up a live entity by id, returning ok=false if it does
	// not exist or is not currently managed.
	Resolve(ctx context.Context, id string) (EntityRef, bool)
}

// LocationResolver is the subset of the location layer the controller
// needs: resolving a single location for the cluster and, when
// availability zones are enabled, enumerating sub-locations.
type LocationResolver interface {
	// ResolveSingle merges explicit (from start(locations)) with any
	// locations the cluster already carries and returns exactly one,
	// or ErrNoLocation / ErrAmbiguousLocation.
	ResolveSingle(existing []Location, explicit []Location) (Location, error)
	// HasAvailabilityZones reports whether loc supports zone enumeration.
	HasAvailabilityZones(loc Location) bool
	// SubLocationsByCount returns n sub-locations of loc, or
	// ErrZoneCapacityExceeded if loc has fewer than n.
	SubLocationsByCount(loc Location, n int) ([]Location, error)
	// SubLocationsByName returns the named sub-locations of loc, in the
	// order named.
	SubLocationsByName(loc Location, names []string) ([]Location, error)
	// AllSubLocations returns every sub-location of loc.
	AllSubLocations(loc Location) ([]Location, error)
	// ParentChain walks loc upward (loc, loc's parent, and so on). Used by
	// ReplaceMember's location-inference walk.
	ParentChain(loc Location) []Location
	// IsMachineProvisioning reports whether loc is a capability-holder for
	// direct machine provisioning, used as a tiebreaker in
	// ReplaceMember's location inference.
	IsMachineProvisioning(loc Location) bool
}

// Policy is an attached policy object the controller can pause and resume
// around start/stop. The real policy engine may invoke the controller
// itself; the controller only ever calls Suspend and Resume.
type Policy interface {
	Suspend(ctx context.Context)
	Resume(ctx context.Context)
}
