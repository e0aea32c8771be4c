package pool

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dreamware/dynclust/internal/sensorstore"
)

// MemberIDAllocator hands out a monotonic cluster_member_id per cluster.
// Initialization is idempotent and guarded by the controller's mutex; the
// fetch-and-increment itself is a plain atomic operation and needs no lock.
type MemberIDAllocator struct {
	initOnce sync.Once
	next     atomic.Int64
	store    *sensorstore.Store
	key      string
}

// NewMemberIDAllocator creates an allocator that persists its counter
// under key in store. store may be nil, in which case the counter is
// purely in-memory (used by tests that don't care about restart
// durability).
func NewMemberIDAllocator(store *sensorstore.Store, key string) *MemberIDAllocator {
	return &MemberIDAllocator{store: store, key: key}
}

// EnsureInitialized loads any persisted counter value on first call; later
// calls are no-ops. Must be called while holding the controller's mutex.
func (a *MemberIDAllocator) EnsureInitialized(ctx context.Context) error {
	var loadErr error
	a.initOnce.Do(func() {
		if a.store == nil {
			return
		}
		var persisted int64
		ok, err := a.store.LoadInt64(ctx, a.key, &persisted)
		if err != nil {
			loadErr = err
			return
		}
		if ok {
			a.next.Store(persisted)
			log.Debugf("member id allocator for %q resumed at %d", a.key, persisted)
		}
	})
	return loadErr
}

// Next returns the next cluster_member_id and persists the advanced
// counter, so that next_member_id is always strictly greater than any
// assigned id of a living member (invariant 3).
func (a *MemberIDAllocator) Next(ctx context.Context) (int64, error) {
	id := a.next.Add(1) - 1
	if a.store != nil {
		if err := a.store.SaveInt64(ctx, a.key, id+1); err != nil {
			return id, err
		}
	}
	return id, nil
}
