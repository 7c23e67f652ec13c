// Package monitoring holds the Prometheus collectors shared by the API and
// the recompute pipeline.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RatingRecomputesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_recomputes_total",
			Help: "Rating recomputations by result",
		},
		[]string{"result"},
	)

	RatingValue = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rating_value",
			Help:    "Distribution of computed ratings",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	SchedulerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_scheduler_runs_total",
			Help: "Scheduled recompute runs",
		},
	)
)

// Result labels for RatingRecomputesTotal.
const (
	ResultOK    = "ok"
	ResultError = "error"
)
