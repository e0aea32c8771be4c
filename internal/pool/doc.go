// Package pool implements a dynamic cluster controller: a component that
// owns a logical group of managed child entities ("members") and drives
// the group's actual size toward a desired size, placing members across
// availability zones, detecting zone failures, quarantining or discarding
// failed members, and supporting in-place member replacement.
//
// # Overview
//
// The Controller is the single serialization point for resize operations.
// It is surrounded by a handful of small, independently testable
// components:
//
//	Controller
//	  |-- MemberIDAllocator   monotonic id, durable across restarts
//	  |-- RemovalStrategy     picks a victim on shrink
//	  |-- ZonePlacementStrategy  distributes additions/removals across zones
//	  |-- ZoneFailureDetector predicts which zones are currently bad
//	  |-- QuarantineGroup     holds failed members for diagnosis
//	  |-- HealthAggregator    periodic cluster_one_and_all_members_up
//	  |-- NodeFactory         mints, parents and registers one member
//	  `-- ParallelStarter     fans out start tasks, collects errors
//
// # Collaborators
//
// The Controller never creates entities, schedules tasks, resolves
// locations, or manages policies directly. It calls out to the
// EntityManager, TaskRunner, LocationResolver and Policy interfaces in
// collaborators.go, which in production are backed by a real
// entity/blueprint/task management layer and in tests or cmd/poolctl by
// small in-memory fakes.
//
// # Concurrency
//
// A single per-cluster sync.Mutex serializes Resize, ResizeByDelta, Grow,
// Shrink and ReplaceMember. The mutex is held across the parallel start
// fan-out deliberately: overlapping resizes must not double-count
// members. Stop() does not hold the mutex across its whole sequence:
// its Shrink to zero and its closing Resize(0) each take the mutex on
// their own. Shrink waits for any resize that already holds the mutex,
// and a Start resize that lands between the two steps is undone by
// Resize(0). See controller.go for detail.
package pool
