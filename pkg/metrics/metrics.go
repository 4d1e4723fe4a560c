package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters the outbox worker and notifier report.
type Metrics struct {
	OutboxProcessingLatency prometheus.Histogram
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	NotificationsSent       *prometheus.CounterVec
	DatabaseOperations      *prometheus.CounterVec
}

func New(prefix string) *Metrics {
	return &Metrics{
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: prefix + "_outbox_processing_seconds",
			Help: "Latency of one outbox polling cycle",
		}),
		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_outbox_events_processed_total",
			Help: "Outbox events successfully published",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_outbox_events_failed_total",
			Help: "Outbox events that exhausted their retries",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_notifications_sent_total",
			Help: "Notification emails by event type and outcome",
		}, []string{"event_type", "outcome"}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_database_operations_total",
			Help: "Database operations by name and outcome",
		}, []string{"operation", "outcome"}),
	}
}
