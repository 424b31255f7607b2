package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LiveConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_websocket_connections_active",
			Help: "Number of active dashboard WebSocket connections",
		},
	)

	LiveConnectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_websocket_connections_total",
			Help: "Total number of dashboard WebSocket connections established",
		},
	)

	LiveEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_websocket_events_total",
			Help: "Total number of events broadcast to dashboards by type",
		},
		[]string{"event_type"},
	)

	LiveDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_websocket_dropped_total",
			Help: "Total number of events dropped because a client buffer was full",
		},
	)
)
