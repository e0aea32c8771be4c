package pool

import "golang.org/x/exp/slices"

// ZonePlacementStrategy decides how additions and removals are distributed
// across a cluster's availability zones. The controller treats
// implementations as black boxes: it only requires that
// LocationsForAdditions returns exactly n locations drawn from available,
// and EntitiesToRemove returns exactly n members drawn from the current
// membership.
type ZonePlacementStrategy interface {
	// LocationsForAdditions chooses n locations, drawn from available, to
	// place n new members into. membersByLocation reflects the current
	// distribution of members and may be used to balance load.
	LocationsForAdditions(membersByLocation map[Location][]*Member, available []Location, n int) ([]Location, error)

	// EntitiesToRemove chooses n members to remove, drawn from the current
	// membership reflected in membersByLocation.
	EntitiesToRemove(membersByLocation map[Location][]*Member, n int) ([]*Member, error)
}

// roundRobinPlacement balances additions and removals evenly across zones,
// the same even-distribution idea as a consistent-hashing shard rebalance:
// always grow the currently-smallest zone and always shrink the currently-
// largest one. Registered under the name "round_robin".
type roundRobinPlacement struct{}

// RoundRobinPlacement is the default ZonePlacementStrategy: it distributes
// additions to the least-loaded zones and picks removals from the
// most-loaded zones first, keeping zone sizes within one of each other.
var RoundRobinPlacement ZonePlacementStrategy = roundRobinPlacement{}

func (roundRobinPlacement) LocationsForAdditions(membersByLocation map[Location][]*Member, available []Location, n int) ([]Location, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(available) == 0 {
		return nil, ErrNoLocation
	}

	counts := make(map[Location]int, len(available))
	for _, loc := range available {
		counts[loc] = len(membersByLocation[loc])
	}

	chosen := make([]Location, 0, n)
	for i := 0; i < n; i++ {
		loc := leastLoaded(available, counts)
		chosen = append(chosen, loc)
		counts[loc]++
	}

	if len(chosen) != n {
		return nil, &PlacementInvariantError{Expected: n, Actual: len(chosen)}
	}
	return chosen, nil
}

func (roundRobinPlacement) EntitiesToRemove(membersByLocation map[Location][]*Member, n int) ([]*Member, error) {
	if n <= 0 {
		return nil, nil
	}

	// Work on a private copy so repeated picks observe each prior removal.
	byLoc := make(map[Location][]*Member, len(membersByLocation))
	locs := make([]Location, 0, len(membersByLocation))
	for loc, members := range membersByLocation {
		cp := make([]*Member, len(members))
		copy(cp, members)
		byLoc[loc] = cp
		locs = append(locs, loc)
	}
	slices.SortFunc(locs, func(a, b Location) int {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	})

	chosen := make([]*Member, 0, n)
	for i := 0; i < n; i++ {
		loc, ok := mostLoaded(locs, byLoc)
		if !ok {
			break
		}
		members := byLoc[loc]
		victim := members[len(members)-1]
		byLoc[loc] = members[:len(members)-1]
		chosen = append(chosen, victim)
	}

	if len(chosen) != n {
		return nil, &PlacementInvariantError{Expected: n, Actual: len(chosen)}
	}
	return chosen, nil
}

// leastLoaded returns the location in locs with the smallest count, ties
// broken by lexical order of the location string for determinism.
func leastLoaded(locs []Location, counts map[Location]int) Location {
	best := locs[0]
	for _, loc := range locs[1:] {
		if counts[loc] < counts[best] || (counts[loc] == counts[best] && loc < best) {
			best = loc
		}
	}
	return best
}

// mostLoaded returns the non-empty location with the largest member count.
func mostLoaded(locs []Location, byLoc map[Location][]*Member) (Location, bool) {
	var best Location
	bestCount := -1
	found := false
	for _, loc := range locs {
		n := len(byLoc[loc])
		if n == 0 {
			continue
		}
		if n > bestCount || (n == bestCount && loc < best) {
			best = loc
			bestCount = n
			found = true
		}
	}
	return best, found
}

// affinityPlacement places each addition in the least-loaded zone, ties
// going to the zone that comes first in available rather than the
// lexically smallest one. Registered under the name "affinity".
type affinityPlacement struct{}

// AffinityPlacement places each addition in the least-loaded zone, ties
// broken by the order available is given, and removes members exactly as
// RoundRobinPlacement does (most-loaded zone first, ties to the lexically
// smallest zone).
var AffinityPlacement ZonePlacementStrategy = affinityPlacement{}

func (affinityPlacement) LocationsForAdditions(membersByLocation map[Location][]*Member, available []Location, n int) ([]Location, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(available) == 0 {
		return nil, ErrNoLocation
	}

	counts := make(map[Location]int, len(available))
	for _, loc := range available {
		counts[loc] = len(membersByLocation[loc])
	}

	chosen := make([]Location, 0, n)
	for i := 0; i < n; i++ {
		// Prefer the least-loaded zone; among equally loaded zones, the
		// earliest in available.
		best := available[0]
		for _, loc := range available[1:] {
			if counts[loc] < counts[best] {
				best = loc
			}
		}
		chosen = append(chosen, best)
		counts[best]++
	}

	if len(chosen) != n {
		return nil, &PlacementInvariantError{Expected: n, Actual: len(chosen)}
	}
	return chosen, nil
}

func (affinityPlacement) EntitiesToRemove(membersByLocation map[Location][]*Member, n int) ([]*Member, error) {
	return RoundRobinPlacement.EntitiesToRemove(membersByLocation, n)
}
