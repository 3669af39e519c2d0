package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks whether each channel is connected.
	ActiveConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sportsbook_ws_active_connections",
			Help: "Whether the WebSocket channel is connected (1) or not (0)",
		},
		[]string{"channel"},
	)

	// ReconnectAttemptsTotal tracks reconnection attempts.
	ReconnectAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_ws_reconnect_attempts_total",
			Help: "Total number of WebSocket reconnection attempts",
		},
		[]string{"channel"},
	)

	// ReconnectFailuresTotal tracks reconnection failures.
	ReconnectFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_ws_reconnect_failures_total",
			Help: "Total number of WebSocket reconnection failures",
		},
		[]string{"channel"},
	)

	// MessagesReceivedTotal tracks messages handed to the channel handler.
	MessagesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sportsbook_ws_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
		[]string{"channel"},
	)

	// MessageLatencySeconds tracks handler processing latency.
	MessageLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsbook_ws_message_latency_seconds",
			Help:    "WebSocket message handler latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	// ConnectionDuration tracks WebSocket connection lifetime.
	ConnectionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sportsbook_ws_connection_duration_seconds",
			Help:    "Duration of WebSocket connections before disconnect",
			Buckets: []float64{1, 10, 60, 300, 1800, 3600, 14400, 43200, 86400},
		},
		[]string{"channel"},
	)
)
