package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// resolverStageTotal counts answers by the ladder stage that produced them.
	// Labels: stage (keyword, direct, intent, completion, topic, out_of_scope, fallback)
	resolverStageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Subsystem: "resolver",
		Name:      "stage_total",
		Help:      "Resolved questions by answering stage",
	}, []string{"stage"})

	resolverDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "assistant",
		Subsystem: "resolver",
		Name:      "duration_seconds",
		Help:      "End-to-end resolution latency by answering stage",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"stage"})

	// knowledgeLoadsTotal counts knowledge document loads.
	// Labels: result (ok, empty, error)
	knowledgeLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Subsystem: "knowledge",
		Name:      "loads_total",
		Help:      "Knowledge document loads by result",
	}, []string{"result"})

	knowledgeEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "assistant",
		Subsystem: "knowledge",
		Name:      "entries",
		Help:      "Entries in the most recently loaded knowledge document",
	})

	// completionRequestsTotal counts completion calls.
	// Labels: status (ok, error, empty, cached)
	completionRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assistant",
		Subsystem: "completion",
		Name:      "requests_total",
		Help:      "Completion service calls by outcome",
	}, []string{"status"})

	completionLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "assistant",
		Subsystem: "completion",
		Name:      "latency_seconds",
		Help:      "Completion service round-trip latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})
)

// RecordResolution records the stage that answered a question and how long it took.
func RecordResolution(stage string, elapsed time.Duration) {
	resolverStageTotal.WithLabelValues(stage).Inc()
	resolverDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// RecordKnowledgeLoad records a knowledge document load outcome.
func RecordKnowledgeLoad(result string, entries int) {
	knowledgeLoadsTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		knowledgeEntries.Set(float64(entries))
	}
}

// RecordCompletion records a completion call outcome.
func RecordCompletion(status string, elapsed time.Duration) {
	completionRequestsTotal.WithLabelValues(status).Inc()
	if elapsed > 0 {
		completionLatencySeconds.Observe(elapsed.Seconds())
	}
}
