package pool

import (
	"time"
)

// ExpectedState is the cluster's lifecycle state as most recently directed
// by a caller, as opposed to what its members are observably doing.
type ExpectedState string

const (
	StateCreated  ExpectedState = "CREATED"
	StateStarting ExpectedState = "STARTING"
	StateRunning  ExpectedState = "RUNNING"
	StateStopping ExpectedState = "STOPPING"
	StateStopped  ExpectedState = "STOPPED"
	StateOnFire   ExpectedState = "ON_FIRE"
)

// ServiceUp is the tri-state service_up sensor value a member reports.
type ServiceUp int

const (
	ServiceUpUnknown ServiceUp = iota
	ServiceUpTrue
	ServiceUpFalse
)

// EntityRef is an opaque handle to an entity managed by the EntityManager
// collaborator. In production it identifies a real entity-layer object; in
// cmd/poolctl it is "<member name>-<uuid>", and in tests a counter-based
// string such as "member-1".
type EntityRef string

// Location is an opaque handle to a location (the cluster's parent location,
// or one of its availability-zone sub-locations).
type Location string

// MemberSpec describes how to create one member. It is intentionally a thin
// wrapper: the real specification format belongs to the external blueprint
// parser.
type MemberSpec struct {
	Name      string
	Locations []Location
}

// Member is the controller's view of one child entity.
type Member struct {
	ID              EntityRef
	ClusterMemberID int64
	CreationTime    time.Time
	Locations       []Location
	IsStartable     bool
	ServiceUp       ServiceUp
}

// Cluster is the data owned by one Controller instance. It is not safe for
// concurrent use outside of Controller, which serializes all mutation
// through its mutex.
type Cluster struct {
	ID          string
	DisplayName string

	DesiredSize int

	// Members preserves join order; membership is unique. Quarantined
	// members live in the Controller's QuarantineGroup instead of a second
	// field here; the Controller always removes from Members before handing
	// a member to the QuarantineGroup, so the two sets stay disjoint.
	Members []*Member

	Location     Location
	SubLocations []Location
	// FailedSubLocations is recomputed at each placement pass.
	FailedSubLocations map[Location]bool

	ExpectedState ExpectedState

	// Policies attached to this cluster; suspended on stop, resumed at the
	// end of every start, whether or not it succeeded.
	Policies []Policy
}

// CurrentSize returns the number of active (non-quarantined) members.
func (c *Cluster) CurrentSize() int {
	return len(c.Members)
}

// memberIndex returns the index of m in c.Members, or -1.
func (c *Cluster) memberIndex(m EntityRef) int {
	for i, mem := range c.Members {
		if mem.ID == m {
			return i
		}
	}
	return -1
}

// removeMemberAt removes and returns the member at index i, preserving the
// relative order of the remaining members.
func (c *Cluster) removeMemberAt(i int) *Member {
	mem := c.Members[i]
	c.Members = append(c.Members[:i], c.Members[i+1:]...)
	return mem
}
