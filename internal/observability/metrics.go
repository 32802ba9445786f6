package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forum_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ContentWrites counts successful post and comment mutations.
	ContentWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_content_writes_total",
		Help: "Total number of post and comment writes by entity and action",
	}, []string{"entity", "action"})

	// ReportsFiled counts abuse reports by target kind.
	ReportsFiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_reports_filed_total",
		Help: "Total number of abuse reports filed",
	}, []string{"target"})

	// AuthorizationDenials counts mutations refused by the ownership check.
	AuthorizationDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_authorization_denials_total",
		Help: "Total number of refused mutations by entity and reason",
	}, []string{"entity", "reason"})

	// AuthEvents counts signup, login and logout outcomes.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_auth_events_total",
		Help: "Total number of authentication events by event and outcome",
	}, []string{"event", "outcome"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
