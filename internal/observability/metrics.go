// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEventsTotal counts processed webhook events by kind and outcome.
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habitnavi_webhook_events_total",
		Help: "Total number of webhook events processed by event kind and outcome",
	}, []string{"kind", "outcome"})

	// CommandsTotal counts interpreted commands by command name.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habitnavi_commands_total",
		Help: "Total number of interpreted text commands by command name",
	}, []string{"command"})

	// ReplyFailures counts failed reply deliveries to the messaging platform.
	ReplyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habitnavi_reply_failures_total",
		Help: "Total number of failed reply deliveries",
	})

	// SignatureRejections counts webhook deliveries rejected at the signature check.
	SignatureRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habitnavi_signature_rejections_total",
		Help: "Total number of webhook deliveries rejected due to a missing or invalid signature",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habitnavi_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "habitnavi_database_query_latency_seconds",
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
