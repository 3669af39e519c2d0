package preferences

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchDurationSeconds tracks preference fetch latency.
	FetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsbook_preferences_fetch_duration_seconds",
			Help:    "Duration of preference document fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"document"},
	)

	// FetchErrorsTotal tracks failed preference fetches.
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_preferences_fetch_errors_total",
			Help: "Total number of failed preference fetches",
		},
		[]string{"document"},
	)
)
