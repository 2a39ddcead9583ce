package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ingestionEvents counts processed events by event type and outcome
	ingestionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmtrace_ingestion_events_total",
			Help: "Total number of ingestion events processed",
		},
		[]string{"type", "outcome"},
	)

	ingestionBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llmtrace_ingestion_batch_duration_seconds",
			Help:    "Ingestion batch processing duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"outcome"},
	)

	analyticsQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llmtrace_analytics_queries_total",
			Help: "Total number of analytics queries by table and outcome",
		},
		[]string{"table", "outcome"},
	)
)

// RecordIngestionEvent records one processed event. outcome is "success" or
// the error code of a rejected event.
func RecordIngestionEvent(eventType, outcome string) {
	ingestionEvents.WithLabelValues(eventType, outcome).Inc()
}

// RecordIngestionBatch records the processing time of a batch
func RecordIngestionBatch(outcome string, duration time.Duration) {
	ingestionBatchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordAnalyticsQuery records one analytics query
func RecordAnalyticsQuery(table, outcome string) {
	analyticsQueries.WithLabelValues(table, outcome).Inc()
}

var circuitState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "llmtrace_circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
	},
	[]string{"name"},
)

// RecordCircuitState records the current state of a named circuit breaker
func RecordCircuitState(name string, state int) {
	circuitState.WithLabelValues(name).Set(float64(state))
}
