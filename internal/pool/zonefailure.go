package pool

import "sync"

// ZoneFailureDetector tracks per-zone start outcomes and classifies zones
// as currently failed. Classification policy is implementation-defined; the
// Controller only consults HasFailed to filter zones out before placement.
type ZoneFailureDetector interface {
	// OnStartupSuccess records a successful start in loc.
	OnStartupSuccess(loc Location, entity EntityRef)
	// OnStartupFailure records a failed start in loc.
	OnStartupFailure(loc Location, entity EntityRef, err error)
	// HasFailed reports whether loc is currently classified as failed.
	HasFailed(loc Location) bool
}

// consecutiveFailureDetector classifies a zone as failed once it has
// accumulated threshold consecutive start failures uninterrupted by a
// success. Any success in the zone resets its count.
type consecutiveFailureDetector struct {
	mu        sync.Mutex
	threshold int
	fails     map[Location]int
}

// NewConsecutiveFailureDetector returns the default ZoneFailureDetector. A
// non-positive threshold falls back to 2.
func NewConsecutiveFailureDetector(threshold int) ZoneFailureDetector {
	if threshold <= 0 {
		threshold = 2
	}
	return &consecutiveFailureDetector{
		threshold: threshold,
		fails:     make(map[Location]int),
	}
}

func (d *consecutiveFailureDetector) OnStartupSuccess(loc Location, entity EntityRef) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.fails, loc)
}

func (d *consecutiveFailureDetector) OnStartupFailure(loc Location, entity EntityRef, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fails[loc]++
}

func (d *consecutiveFailureDetector) HasFailed(loc Location) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fails[loc] >= d.threshold
}
