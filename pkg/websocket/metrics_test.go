package websocket

import (
	"testing"
)

func TestMetrics_Registration(t *testing.T) {
	if ActiveConnections == nil {
		t.Error("ActiveConnections not registered")
	}

	if ReconnectAttemptsTotal == nil {
		t.Error("ReconnectAttemptsTotal not registered")
	}

	if ReconnectFailuresTotal == nil {
		t.Error("ReconnectFailuresTotal not registered")
	}

	if MessagesReceivedTotal == nil {
		t.Error("MessagesReceivedTotal not registered")
	}

	if MessageLatencySeconds == nil {
		t.Error("MessageLatencySeconds not registered")
	}

	if ConnectionDuration == nil {
		t.Error("ConnectionDuration not registered")
	}
}

func TestMetrics_ChannelLabels(t *testing.T) {
	for _, channel := range []string{"market-data", "account", "settings"} {
		ActiveConnections.WithLabelValues(channel).Set(1)
		ReconnectAttemptsTotal.WithLabelValues(channel).Inc()
		ReconnectFailuresTotal.WithLabelValues(channel).Inc()
		MessagesReceivedTotal.WithLabelValues(channel).Inc()
		MessageLatencySeconds.WithLabelValues(channel).Observe(0.001)
		ConnectionDuration.WithLabelValues(channel).Observe(60)
	}
}
