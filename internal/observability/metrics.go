package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// FacadeOperations counts façade calls by operation and outcome.
	FacadeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_facade_operations_total",
		Help: "Total number of façade operations by outcome",
	}, []string{"operation", "outcome"})

	// FacadeLatency records façade call latency by operation.
	FacadeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studyhub_facade_latency_seconds",
		Help:    "Façade operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studyhub_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// NotificationStreams is the gauge of open notification websocket streams.
	NotificationStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studyhub_notification_streams",
		Help: "Number of open notification streams",
	})
)

// TrackOperation returns a function that records the outcome and latency of a façade call.
// Pass a pointer to the named error return so the deferred call sees the final value.
func TrackOperation(operation string) func(err *error) {
	start := time.Now()
	return func(err *error) {
		outcome := "success"
		if err != nil && *err != nil {
			outcome = "error"
		}
		FacadeOperations.WithLabelValues(operation, outcome).Inc()
		FacadeLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
