// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Processing metrics
	MessagesProcessed prometheus.Counter
	ProcessingErrors  *prometheus.CounterVec
	ProcessingLatency prometheus.Histogram

	// Storage metrics
	InsertDuration prometheus.Histogram
	InsertErrors   prometheus.Counter

	// Queue metrics
	MessagesAcked     prometheus.Counter
	AckErrors         prometheus.Counter
	MessagesPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "telemetry_pipeline"
	}

	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "messages_processed_total",
			Help:      "Total number of messages processed and persisted",
		}),
		ProcessingErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "processing_errors_total",
			Help:      "Total number of processing failures by pipeline step",
		}, []string{"kind"}),
		ProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "processor",
			Name:      "processing_latency_seconds",
			Help:      "End-to-end per-message processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		InsertDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "insert_duration_seconds",
			Help:      "Record insert duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		InsertErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "insert_errors_total",
			Help:      "Total number of failed record inserts",
		}),

		MessagesAcked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "messages_acked_total",
			Help:      "Total number of queue messages acknowledged",
		}),
		AckErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "ack_errors_total",
			Help:      "Total number of failed acknowledgments after a durable insert",
		}),
		MessagesPublished: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "messages_published_total",
			Help:      "Total number of payloads published to the queue",
		}),
		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "publish_errors_total",
			Help:      "Total number of failed queue publishes",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMessageProcessed records one successfully processed message.
func RecordMessageProcessed(seconds float64) {
	DefaultMetrics.MessagesProcessed.Inc()
	DefaultMetrics.ProcessingLatency.Observe(seconds)
}

// RecordProcessingError records a processing failure by pipeline step.
func RecordProcessingError(kind string) {
	DefaultMetrics.ProcessingErrors.WithLabelValues(kind).Inc()
}

// RecordInsert records store insert metrics.
func RecordInsert(seconds float64, err error) {
	DefaultMetrics.InsertDuration.Observe(seconds)
	if err != nil {
		DefaultMetrics.InsertErrors.Inc()
	}
}

// RecordMessageAcked increments the acknowledged messages counter.
func RecordMessageAcked() {
	DefaultMetrics.MessagesAcked.Inc()
}

// RecordAckError increments the failed acknowledgments counter.
func RecordAckError() {
	DefaultMetrics.AckErrors.Inc()
}

// RecordPublish records a queue publish attempt.
func RecordPublish(err error) {
	if err != nil {
		DefaultMetrics.PublishErrors.Inc()
		return
	}
	DefaultMetrics.MessagesPublished.Inc()
}
