package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoadsStartedTotal tracks catalog loads started.
	LoadsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_catalog_loads_started_total",
		Help: "Total number of catalog loads started",
	})

	// LoadFailuresTotal tracks catalog loads that failed.
	LoadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_catalog_load_failures_total",
		Help: "Total number of failed catalog loads",
	})

	// LoadDurationSeconds tracks catalog load latency.
	LoadDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sportsbook_catalog_load_duration_seconds",
		Help:    "Duration of catalog loads",
		Buckets: prometheus.DefBuckets,
	})

	// SharedFetchesTotal tracks fetches answered by a concurrent in-flight request.
	SharedFetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_catalog_shared_fetches_total",
		Help: "Total number of catalog fetches deduplicated by singleflight",
	})
)
