// Package observability exposes Prometheus metrics for the receiving
// pipeline, following the pack's client_golang usage rather than hand-rolled
// counters.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_uploads_total",
			Help: "Total number of upload admission attempts by outcome",
		},
		[]string{"outcome"},
	)

	OCREngineInvocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_ocr_engine_invocations_total",
			Help: "Total OCR engine invocations by engine and outcome",
		},
		[]string{"engine", "outcome"},
	)

	OCRDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receiving_ocr_duration_seconds",
			Help:    "OCR engine processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	LLMCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_llm_calls_total",
			Help: "Total LLM normalization calls by model",
		},
		[]string{"model"},
	)

	LLMCostDollars = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receiving_llm_cost_dollars_total",
			Help: "Cumulative estimated LLM cost in dollars by model",
		},
		[]string{"model"},
	)

	SessionsCommittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receiving_sessions_committed_total",
			Help: "Total receiving sessions successfully committed",
		},
	)

	CommitConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receiving_commit_conflicts_total",
			Help: "Total commit attempts that lost the double-commit race",
		},
	)

	InsufficientStockTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receiving_insufficient_stock_total",
			Help: "Total atomic inventory steps that reported insufficient stock",
		},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receiving_pipeline_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(
		UploadsTotal,
		OCREngineInvocations,
		OCRDuration,
		LLMCallsTotal,
		LLMCostDollars,
		SessionsCommittedTotal,
		CommitConflictsTotal,
		InsufficientStockTotal,
		PipelineStageDuration,
	)
}

// Handler returns the Prometheus scrape handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures an operation's wall-clock duration for a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveVec records the elapsed duration into a label combination of a
// HistogramVec.
func (t *Timer) ObserveVec(h *prometheus.HistogramVec, labels ...string) {
	h.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Observe records the elapsed duration into a plain Histogram.
func (t *Timer) Observe(h prometheus.Histogram) {
	h.Observe(time.Since(t.start).Seconds())
}
