package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_operation_duration_seconds",
			Help:    "Duration of catalog search operations in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	zeroResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_zero_results_total",
			Help: "Total number of searches and suggestions that matched nothing",
		},
		[]string{"operation"},
	)

	suggestCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_suggest_cache_requests_total",
			Help: "Suggestion cache lookups by result",
		},
		[]string{"result"},
	)
)
