package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExpirationsTotal tracks server-side session expirations.
var ExpirationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sportsbook_session_expirations_total",
	Help: "Total number of user sessions expired by the server",
})
