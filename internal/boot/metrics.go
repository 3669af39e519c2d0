package boot

import (
	"github.com/mselser95/sportsbook-boot/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// TransitionsTotal tracks state transitions by source and target kind.
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_boot_transitions_total",
			Help: "Total number of application state transitions",
		},
		[]string{"from", "to"},
	)

	// CurrentState is 1 for the active state kind and 0 for the others.
	CurrentState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sportsbook_boot_current_state",
			Help: "Current application state (1 = active)",
		},
		[]string{"state"},
	)

	// EventsHandledTotal tracks dispatched orchestrator events by name.
	EventsHandledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_boot_events_handled_total",
			Help: "Total number of orchestrator events handled",
		},
		[]string{"event"},
	)

	// EventsDroppedTotal tracks events discarded at the handler boundary.
	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_boot_events_dropped_total",
			Help: "Total number of stale orchestrator events dropped",
		},
		[]string{"reason"},
	)

	// CatalogLoadRequestsTotal tracks catalog load commands issued by the orchestrator.
	CatalogLoadRequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_boot_catalog_load_requests_total",
		Help: "Total number of catalog load commands issued",
	})

	// VersionDecisionsTotal tracks settled version comparisons by outcome.
	VersionDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_boot_version_decisions_total",
			Help: "Total number of version comparisons by decision",
		},
		[]string{"decision"},
	)

	// RetriesTotal tracks RetryFromError invocations by error kind.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_boot_retries_total",
			Help: "Total number of boot retries after an error",
		},
		[]string{"error"},
	)

	// RestartsTotal tracks language-change restarts.
	RestartsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportsbook_boot_restarts_total",
		Help: "Total number of orchestrator restarts",
	})
)

func setStateGauge(state types.AppState) {
	for _, kind := range types.AllStateKinds() {
		value := 0.0
		if kind == state.Kind {
			value = 1
		}
		CurrentState.WithLabelValues(kind.String()).Set(value)
	}
}
