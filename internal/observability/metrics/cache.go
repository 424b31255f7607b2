package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ViewCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_cache_lookups_total",
			Help: "Total number of view cache lookups by result",
		},
		[]string{"backend", "result"},
	)

	ViewCacheInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_cache_invalidations_total",
			Help: "Total number of view cache invalidations by key",
		},
		[]string{"key"},
	)

	ViewCacheStaleWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_cache_stale_writes_total",
			Help: "Total number of view cache writes skipped because the key was invalidated meanwhile",
		},
		[]string{"key"},
	)
)
