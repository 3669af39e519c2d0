package settings

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MessagesTotal tracks settings frames by type.
var MessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sportsbook_settings_messages_total",
		Help: "Total number of business settings messages by type",
	},
	[]string{"type"},
)
