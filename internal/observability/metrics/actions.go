package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActionInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "server_action_invocations_total",
			Help: "Total number of server action invocations by outcome",
		},
		[]string{"action", "outcome"},
	)

	ActionDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "server_action_duration_seconds",
			Help:    "Duration of server actions in seconds",
			Buckets: []float64{0.1, 0.5, 1, 1.5, 2, 3, 5},
		},
		[]string{"action"},
	)
)
