package pool

import (
	"context"
	"sync"
	"time"
)

// DefaultHealthPeriod is the default HealthAggregator evaluation interval.
const DefaultHealthPeriod = 5 * time.Second

// HealthAggregator periodically recomputes the cluster_one_and_all_members_up
// sensor. It reads cluster state through a snapshot function rather than the
// Controller's mutex; momentary inconsistency is acceptable and
// self-corrects on the next poll.
type HealthAggregator struct {
	period  time.Duration
	snap    func() healthSnapshot
	publish func(bool)

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// healthSnapshot is the slice of Cluster state HealthAggregator needs, as
// captured by the snapshot function passed to NewHealthAggregator. The
// Controller's snapshot function does not take its mutex, so the
// aggregator's goroutine never waits on a resize in progress.
type healthSnapshot struct {
	expectedState ExpectedState
	members       []*Member
}

// NewHealthAggregator constructs a HealthAggregator. snap returns a view of
// the cluster's current state, which may be momentarily inconsistent with a
// concurrent resize; publish is called with
// the computed boolean on every tick and whenever Start performs its first
// immediate evaluation. period <= 0 uses DefaultHealthPeriod.
func NewHealthAggregator(period time.Duration, snap func() healthSnapshot, publish func(bool)) *HealthAggregator {
	if period <= 0 {
		period = DefaultHealthPeriod
	}
	return &HealthAggregator{period: period, snap: snap, publish: publish}
}

// Start begins periodic evaluation in a background goroutine. Calling Start
// on an already-running aggregator is a no-op.
func (h *HealthAggregator) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.running = true

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.evaluateOnce()

		ticker := time.NewTicker(h.period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.evaluateOnce()
			case <-runCtx.Done():
				return
			}
		}
	}()
}

// Stop cancels the background goroutine and waits for it to exit. Stop is
// idempotent.
func (h *HealthAggregator) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	cancel := h.cancel
	h.running = false
	h.mu.Unlock()

	cancel()
	h.wg.Wait()
}

// Running reports whether the background goroutine is currently active.
func (h *HealthAggregator) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *HealthAggregator) evaluateOnce() {
	up := h.evaluate()
	h.publish(up)
}

// evaluate returns false if members is empty, false if expected state isn't
// RUNNING, false if any member's service_up isn't true, true otherwise.
// Panics during evaluation are recovered and treated as false.
func (h *HealthAggregator) evaluate() (up bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("health aggregator: evaluation panicked: %v", r)
			up = false
		}
	}()

	snap := h.snap()
	if len(snap.members) == 0 {
		return false
	}
	if snap.expectedState != StateRunning {
		return false
	}
	for _, m := range snap.members {
		if m.ServiceUp != ServiceUpTrue {
			return false
		}
	}
	return true
}
