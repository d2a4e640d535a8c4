package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// MalformedFieldTotal counts semi-structured columns that failed to
	// decode and were treated as absent, labeled by field name.
	MalformedFieldTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "dashboard",
		Name:      "malformed_field_total",
		Help:      "Total number of semi-structured fields that failed to decode and were dropped.",
	}, []string{"field"})

	// CorrelationMissTotal counts reports with no matching chat log.
	CorrelationMissTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "dashboard",
		Name:      "correlation_miss_total",
		Help:      "Total number of gap reports with no matching chat log.",
	})

	// CorrelationAmbiguousTotal counts reports with more than one candidate chat log.
	CorrelationAmbiguousTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "dashboard",
		Name:      "correlation_ambiguous_total",
		Help:      "Total number of gap reports with more than one candidate chat log (first match wins).",
	})

	// FetchFailureTotal counts upstream fetch failures by collection.
	FetchFailureTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "dashboard",
		Name:      "fetch_failure_total",
		Help:      "Total number of upstream store fetch failures, labeled by collection.",
	}, []string{"collection"})

	// ViewBuildDurationSeconds is end-to-end time to build a view.
	ViewBuildDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "insights",
		Subsystem: "dashboard",
		Name:      "view_build_duration_seconds",
		Help:      "End-to-end time to build a dashboard view (fetch + correlate + aggregate).",
		Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"view"})

	// BroadcastTotal counts websocket broadcasts of refreshed report batches.
	BroadcastTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "dashboard",
		Name:      "broadcast_total",
		Help:      "Total number of report batches broadcast to websocket clients.",
	})

	// ListenerProcessedTotal counts processed queue deliveries by outcome.
	ListenerProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "dashboard",
		Name:      "listener_processed_total",
		Help:      "Total number of RabbitMQ deliveries processed by the refresh listener, labeled by result.",
	}, []string{"result"})

	// ListenerConnected is 1 when the subscriber considers itself connected.
	ListenerConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "insights",
		Subsystem: "dashboard",
		Name:      "listener_connected",
		Help:      "Whether the refresh listener RabbitMQ subscriber is currently connected (best-effort).",
	})
)

// Register registers dashboard metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			MalformedFieldTotal,
			CorrelationMissTotal,
			CorrelationAmbiguousTotal,
			FetchFailureTotal,
			ViewBuildDurationSeconds,
			BroadcastTotal,
			ListenerProcessedTotal,
			ListenerConnected,
		)
	})
}
