package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MessagesTotal tracks gateway frames by channel and type.
var MessagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sportsbook_gateway_messages_total",
		Help: "Total number of gateway messages by channel and type",
	},
	[]string{"channel", "type"},
)
