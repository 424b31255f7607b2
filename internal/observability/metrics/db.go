package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_connections",
			Help: "Postgres pool connections by state (acquired, idle, total, max)",
		},
		[]string{"state"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of database query errors",
		},
		[]string{"operation", "error_type"},
	)

	DBRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_retries_total",
			Help: "Total number of retried database operations",
		},
		[]string{"operation"},
	)
)
