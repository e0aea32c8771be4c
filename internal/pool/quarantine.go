package pool

import (
	"context"
	"sync"
	"time"
)

// QuarantineEntry records one quarantined member plus the error and
// timestamp it was quarantined with, for operator diagnosis.
type QuarantineEntry struct {
	Member      *Member
	Reason      error
	Quarantined time.Time
}

// QuarantineGroup is an auxiliary child group that holds failed members out
// of the active Members set without discarding them. Members held here are
// not stopped by shrink, but are stopped by the Controller's
// stoppable-children sweep during Stop.
type QuarantineGroup struct {
	mu      sync.Mutex
	entries []QuarantineEntry
}

// NewQuarantineGroup returns an empty QuarantineGroup.
func NewQuarantineGroup() *QuarantineGroup {
	return &QuarantineGroup{}
}

// Add moves m into the group, recording reason and the current time.
// Callers must already have removed m from Cluster.Members; the group does
// not check, so adding a still-active member would leave it in both sets.
func (q *QuarantineGroup) Add(m *Member, reason error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = append(q.entries, QuarantineEntry{Member: m, Reason: reason, Quarantined: time.Now()})
}

// Members returns the currently quarantined members, in the order they were
// added.
func (q *QuarantineGroup) Members() []*Member {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Member, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.Member
	}
	return out
}

// Entries returns a snapshot of every quarantine entry, including reason and
// timestamp, for operator diagnosis.
func (q *QuarantineGroup) Entries() []QuarantineEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]QuarantineEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Len reports the current quarantine size.
func (q *QuarantineGroup) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// StopAll stops every startable quarantined member without unmanaging any
// of them or clearing the group. Stop failures are logged but do not
// prevent the sweep from continuing to the next member; the group is left
// populated afterward so operators can still inspect it.
func (q *QuarantineGroup) StopAll(ctx context.Context, em EntityManager) {
	q.mu.Lock()
	members := make([]*Member, len(q.entries))
	for i, e := range q.entries {
		members[i] = e.Member
	}
	q.mu.Unlock()

	for _, m := range members {
		if !m.IsStartable {
			continue
		}
		task, err := em.StopTask(ctx, m.ID)
		if err != nil {
			log.Errorf("quarantine: building stop task for member %s: %v", m.ID, err)
			continue
		}
		if err := task.Await(ctx); err != nil {
			log.Errorf("quarantine: stopping member %s: %v", m.ID, err)
		}
	}
}
