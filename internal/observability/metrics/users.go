package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UsersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_created_total",
			Help: "Total number of users created",
		},
	)

	UsersValidationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_validation_failures_total",
			Help: "Total number of rejected create-user requests",
		},
	)

	UserStoreOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_store_operation_duration_seconds",
			Help:    "Duration of user store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"backend", "operation"},
	)
)
