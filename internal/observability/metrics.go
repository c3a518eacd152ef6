// Package observability provides tracing and application metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gazette_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheResults counts post-cache lookups by result (hit or miss).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gazette_cache_results_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// CacheInvalidations counts cache invalidations by trigger source.
	CacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gazette_cache_invalidations_total",
		Help: "Total number of cache invalidations by trigger",
	}, []string{"trigger"})

	// MailDeliveries counts notification email dispatches by outcome.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gazette_mail_deliveries_total",
		Help: "Total number of notification mail dispatches by outcome",
	}, []string{"outcome"})

	// RatingRecomputes counts author rating recomputations by outcome.
	RatingRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gazette_rating_recomputes_total",
		Help: "Total number of author rating recomputations by outcome",
	}, []string{"outcome"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gazette_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
