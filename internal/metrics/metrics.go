// Package metrics registers the Prometheus series the pool Controller
// publishes for resize outcomes and cluster sizing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dynclust"

var (
	// ResizeTotal counts resize outcomes, labeled by kind
	// (grow/shrink/replace) and outcome (success/failure).
	ResizeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resize_total",
			Help:      "Total number of resize operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// CurrentSize tracks the live member count per cluster.
	CurrentSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_size",
			Help:      "Current number of active members",
		},
		[]string{"cluster"},
	)

	// DesiredSize tracks the configured desired member count per cluster.
	DesiredSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "desired_size",
			Help:      "Desired number of active members",
		},
		[]string{"cluster"},
	)

	// QuarantinedSize tracks the quarantine group size per cluster.
	QuarantinedSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quarantined_size",
			Help:      "Current number of quarantined members",
		},
		[]string{"cluster"},
	)

	// ClusterOneAndAllMembersUp mirrors the cluster_one_and_all_members_up
	// sensor as a gauge (1/0) for scraping alongside the other series.
	ClusterOneAndAllMembersUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "one_and_all_members_up",
			Help:      "1 if the cluster and every member is up, 0 otherwise",
		},
		[]string{"cluster"},
	)
)

// Recorder implements pool.Metrics for a single named cluster, publishing
// to the package-level vectors above with the cluster label bound once at
// construction.
type Recorder struct {
	cluster string
}

// NewRecorder returns a Recorder that reports metrics under the given
// cluster label.
func NewRecorder(cluster string) *Recorder {
	return &Recorder{cluster: cluster}
}

// ObserveResize satisfies pool.Metrics.
func (r *Recorder) ObserveResize(kind, outcome string) {
	ResizeTotal.WithLabelValues(kind, outcome).Inc()
}

// SetSizes satisfies pool.Metrics.
func (r *Recorder) SetSizes(current, desired, quarantined int) {
	CurrentSize.WithLabelValues(r.cluster).Set(float64(current))
	DesiredSize.WithLabelValues(r.cluster).Set(float64(desired))
	QuarantinedSize.WithLabelValues(r.cluster).Set(float64(quarantined))
}

// SetClusterUp satisfies pool.Metrics; the pool Controller calls it from
// its HealthAggregator publish callback alongside the sensor write.
func (r *Recorder) SetClusterUp(up bool) {
	v := 0.0
	if up {
		v = 1.0
	}
	ClusterOneAndAllMembersUp.WithLabelValues(r.cluster).Set(v)
}
