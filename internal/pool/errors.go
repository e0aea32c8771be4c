package pool

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Use errors.Is against these; the richer variants
// below wrap one of them via Unwrap.
var (
	ErrNoLocation           = errors.New("pool: no location available")
	ErrAmbiguousLocation    = errors.New("pool: ambiguous location")
	ErrNoMemberSpec         = errors.New("pool: no member spec or legacy factory configured")
	ErrNoSuchMember         = errors.New("pool: no such member")
	ErrQuorumNotReached     = errors.New("pool: quorum not reached")
	ErrGrowFailed           = errors.New("pool: grow produced no member")
	ErrStopFailed           = errors.New("pool: member failed to stop")
	ErrZoneCapacityExceeded = errors.New("pool: requested zones exceed available sub-locations")
	ErrPlacementInvariant   = errors.New("pool: placement strategy returned the wrong count")
	ErrNotSupported         = errors.New("pool: operation not supported")
)

// QuorumNotReachedError carries the current size and the first interesting
// cause observed while starting the cluster.
type QuorumNotReachedError struct {
	CurrentSize int
	QuorumSize  int
	Cause       error
}

func (e *QuorumNotReachedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pool: quorum not reached: size %d below quorum %d: %v", e.CurrentSize, e.QuorumSize, e.Cause)
	}
	return fmt.Sprintf("pool: quorum not reached: size %d below quorum %d", e.CurrentSize, e.QuorumSize)
}

func (e *QuorumNotReachedError) Unwrap() error { return ErrQuorumNotReached }

// StopFailedError is returned by ReplaceMember when the replacement member
// is already running but the old member failed to stop.
type StopFailedError struct {
	Member EntityRef
	Cause  error
}

func (e *StopFailedError) Error() string {
	return fmt.Sprintf("pool: member %s failed to stop during replacement: %v", e.Member, e.Cause)
}

func (e *StopFailedError) Unwrap() error { return ErrStopFailed }

// GrowFailedError is raised when a required grow step (including the grow
// half of ReplaceMember) produces no member at all.
type GrowFailedError struct {
	Cause error
}

func (e *GrowFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pool: grow produced no member: %v", e.Cause)
	}
	return "pool: grow produced no member"
}

func (e *GrowFailedError) Unwrap() error { return ErrGrowFailed }

// PlacementInvariantError reports a placement strategy that returned the
// wrong number of locations or members.
type PlacementInvariantError struct {
	Expected int
	Actual   int
}

func (e *PlacementInvariantError) Error() string {
	return fmt.Sprintf("pool: placement strategy returned %d, expected %d", e.Actual, e.Expected)
}

func (e *PlacementInvariantError) Unwrap() error { return ErrPlacementInvariant }

// StartErrors aggregates the per-member errors collected by a single
// addInEachLocation pass. Partial success is an expected outcome, so these
// are returned alongside the successes rather than aborting the grow;
// callers decide whether to surface them.
type StartErrors struct {
	ByMember map[EntityRef]error
}

func (e *StartErrors) Error() string {
	return fmt.Sprintf("pool: %d member(s) failed to start", len(e.ByMember))
}

// First returns one of the wrapped errors, or nil if there are none. Map
// iteration order makes the pick arbitrary; it is only useful as a sample
// cause for logs and wrapped error messages.
func (e *StartErrors) First() error {
	for _, err := range e.ByMember {
		return err
	}
	return nil
}
