// Package observability provides logging, metrics, and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ViolationsDetected counts detector findings by type and severity.
	ViolationsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bullpen_moderation_violations_total",
		Help: "Total policy violations detected, by violation type and severity",
	}, []string{"violation_type", "severity"})

	// ActionsExecuted counts enforcement actions by type and origin.
	ActionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bullpen_moderation_actions_total",
		Help: "Total enforcement actions executed, by action type and origin",
	}, []string{"action_type", "origin"})

	// SweepPurged counts action records deactivated by the cleanup sweeper.
	SweepPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bullpen_moderation_sweep_purged_total",
		Help: "Total expired moderation action records deactivated by sweeps",
	})

	// RedisErrors counts counter-store errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bullpen_redis_errors_total",
		Help: "Total Redis errors by command",
	}, []string{"operation"})

	// DatabaseQueryLatency records record-store query latency.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bullpen_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called
// (typically deferred at the top of a repository method).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
