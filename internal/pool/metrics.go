package pool

// Metrics is an optional observer the Controller reports resize outcomes
// and gauge values to. It exists so internal/metrics can publish Prometheus
// series without this package importing prometheus types directly --
// satisfied structurally by internal/metrics.Recorder.
type Metrics interface {
	// ObserveResize records one resize outcome, kind one of
	// "grow"/"shrink"/"replace", outcome one of "success"/"failure".
	ObserveResize(kind, outcome string)
	// SetSizes publishes current gauge values.
	SetSizes(current, desired, quarantined int)
	// SetClusterUp publishes the aggregated cluster_one_and_all_members_up
	// value computed by the HealthAggregator.
	SetClusterUp(up bool)
}

type noopMetrics struct{}

func (noopMetrics) ObserveResize(string, string)               {}
func (noopMetrics) SetSizes(current, desired, quarantined int) {}
func (noopMetrics) SetClusterUp(bool)                          {}
