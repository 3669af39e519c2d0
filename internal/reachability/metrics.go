package reachability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal tracks reachability probes by outcome.
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_reachability_probes_total",
			Help: "Total number of reachability probes by result",
		},
		[]string{"result"},
	)

	// ProbeDurationSeconds tracks probe latency.
	ProbeDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsbook_reachability_probe_duration_seconds",
		Help:    "Duration of reachability probes",
		Buckets: prometheus.DefBuckets,
	})
)
