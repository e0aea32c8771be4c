package pool

// Registry names for the pluggable strategies. Each registry is a plain map
// populated at package init and optionally extended by callers via the
// Register* functions; strategies are always resolved by stable name, never
// constructed reflectively.
const (
	RemovalStrategyDefault = "default"

	ZonePlacementRoundRobin = "round_robin"
	ZonePlacementAffinity   = "affinity"

	ZoneFailureDetectorDefault = "consecutive_failures"
)

var removalStrategies = map[string]RemovalStrategy{
	RemovalStrategyDefault: DefaultRemovalStrategy,
}

var zonePlacementStrategies = map[string]func() ZonePlacementStrategy{
	ZonePlacementRoundRobin: func() ZonePlacementStrategy { return RoundRobinPlacement },
	ZonePlacementAffinity:   func() ZonePlacementStrategy { return AffinityPlacement },
}

var zoneFailureDetectors = map[string]func(threshold int) ZoneFailureDetector{
	ZoneFailureDetectorDefault: func(threshold int) ZoneFailureDetector {
		return NewConsecutiveFailureDetector(threshold)
	},
}

// RegisterRemovalStrategy adds or replaces a named RemovalStrategy. Intended
// for callers that want to plug in a custom strategy without modifying this
// package.
func RegisterRemovalStrategy(name string, strategy RemovalStrategy) {
	removalStrategies[name] = strategy
}

// LookupRemovalStrategy resolves a registered RemovalStrategy by name,
// reporting ok=false for an unknown name.
func LookupRemovalStrategy(name string) (RemovalStrategy, bool) {
	if name == "" {
		name = RemovalStrategyDefault
	}
	s, ok := removalStrategies[name]
	return s, ok
}

// RegisterZonePlacementStrategy adds or replaces a named ZonePlacementStrategy
// factory.
func RegisterZonePlacementStrategy(name string, factory func() ZonePlacementStrategy) {
	zonePlacementStrategies[name] = factory
}

// LookupZonePlacementStrategy resolves a registered ZonePlacementStrategy by
// name, reporting ok=false for an unknown name.
func LookupZonePlacementStrategy(name string) (ZonePlacementStrategy, bool) {
	if name == "" {
		name = ZonePlacementRoundRobin
	}
	factory, ok := zonePlacementStrategies[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// RegisterZoneFailureDetector adds or replaces a named ZoneFailureDetector
// factory. The factory takes the configured consecutive-failure threshold so
// registered detectors can honor Config.ZoneFailureThreshold.
func RegisterZoneFailureDetector(name string, factory func(threshold int) ZoneFailureDetector) {
	zoneFailureDetectors[name] = factory
}

// LookupZoneFailureDetector resolves a registered ZoneFailureDetector by
// name, reporting ok=false for an unknown name.
func LookupZoneFailureDetector(name string, threshold int) (ZoneFailureDetector, bool) {
	if name == "" {
		name = ZoneFailureDetectorDefault
	}
	factory, ok := zoneFailureDetectors[name]
	if !ok {
		return nil, false
	}
	return factory(threshold), true
}
