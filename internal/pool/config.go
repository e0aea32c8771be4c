package pool

// Config carries everything a Controller can be configured with. Zero
// values are usable defaults except InitialQuorumSize, where -1 (not 0)
// means "same as InitialSize".
type Config struct {
	// InitialSize is the desired size start() resizes to.
	InitialSize int `yaml:"initial_size"`

	// InitialQuorumSize is the minimum size start() must reach to avoid
	// QuorumNotReached. -1 (the default) means "same as InitialSize".
	InitialQuorumSize int `yaml:"initial_quorum_size"`

	// UpQuorumCheck, when set, overrides the default up-quorum predicate
	// used to compute the cluster's service_up sensor. nil means "use the
	// default", which itself depends on InitialSize.
	UpQuorumCheck UpQuorumCheck `yaml:"-"`

	// MemberSpec is used for every member after the first.
	MemberSpec *MemberSpec `yaml:"-"`
	// FirstMemberSpec, if set, is used only for the very first member
	// added to an empty cluster.
	FirstMemberSpec *MemberSpec `yaml:"-"`

	// RemovalStrategyName selects a registered RemovalStrategy by name;
	// empty means the built-in default (newest-stoppable).
	RemovalStrategyName string `yaml:"removal_strategy"`
	// ZonePlacementStrategyName selects a registered ZonePlacementStrategy.
	ZonePlacementStrategyName string `yaml:"zone_placement_strategy"`
	// ZoneFailureDetectorName selects a registered ZoneFailureDetector.
	ZoneFailureDetectorName string `yaml:"zone_failure_detector"`

	// EnableAvailabilityZones turns on zone-aware placement.
	EnableAvailabilityZones bool `yaml:"enable_availability_zones"`
	// AvailabilityZoneNames, if non-empty, pins the exact sub-locations by
	// name instead of using NumAvailabilityZones or "all".
	AvailabilityZoneNames []string `yaml:"availability_zone_names"`
	// NumAvailabilityZones, if > 0 and AvailabilityZoneNames is empty,
	// requests exactly this many sub-locations.
	NumAvailabilityZones int `yaml:"num_availability_zones"`

	// QuarantineFailedEntities turns on quarantine-instead-of-discard for
	// members that fail to start.
	QuarantineFailedEntities bool `yaml:"quarantine_failed_entities"`

	// CustomChildFlags are merged into every new member's creation flags,
	// overridden by any flags addNode is called with directly.
	CustomChildFlags map[string]any `yaml:"custom_child_flags"`

	// HealthPeriodSeconds overrides the default 5-second HealthAggregator
	// period; 0 means use the default.
	HealthPeriodSeconds float64 `yaml:"health_period_seconds"`

	// ZoneFailureThreshold is the consecutive-failure count after which
	// the default ZoneFailureDetector classifies a zone as failed.
	ZoneFailureThreshold int `yaml:"zone_failure_threshold"`

	// LegacyMemberSpecFactory is consulted by NodeFactory only when neither
	// MemberSpec nor FirstMemberSpec is configured. nil means no legacy
	// factory is available, in which case AddNode fails with
	// ErrNoMemberSpec.
	LegacyMemberSpecFactory func() *MemberSpec `yaml:"-"`
}

// UpQuorumCheck decides whether a given count of up members out of size
// total satisfies the cluster's up-quorum.
type UpQuorumCheck func(sizeUp, size int) bool

// AtLeastOneUnlessEmpty is the default up-quorum check installed when
// InitialSize is 0 and no explicit UpQuorumCheck is configured: zero
// members count as up.
func AtLeastOneUnlessEmpty(sizeUp, size int) bool {
	if size == 0 {
		return true
	}
	return sizeUp >= 1
}

// AllMustBeUp requires every member to be up.
func AllMustBeUp(sizeUp, size int) bool {
	return size > 0 && sizeUp == size
}

// resolvedInitialQuorumSize applies the -1 "same as initial" default. An
// InitialQuorumSize configured greater than InitialSize is a
// misconfiguration; it is clamped to InitialSize with a warning.
func (c Config) resolvedInitialQuorumSize() int {
	q := c.InitialQuorumSize
	if q < 0 {
		q = c.InitialSize
	}
	if q > c.InitialSize {
		log.Warningf("initial quorum size %d is greater than initial size %d; using %d", q, c.InitialSize, c.InitialSize)
		q = c.InitialSize
	}
	return q
}
