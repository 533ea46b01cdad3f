// Package metrics provides Prometheus metrics for the summarization pipeline.
//
// All metrics are registered with the Prometheus default registry. The
// recorder implements the engine's MetricsRecorder interface so the engine
// itself stays free of any Prometheus dependency.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusEngineMetrics records summarization engine metrics to Prometheus.
type PrometheusEngineMetrics struct {
	documentsCounter    *prometheus.CounterVec
	chunksHistogram     prometheus.Histogram
	roundsHistogram     prometheus.Histogram
	generationHistogram prometheus.Histogram
	chunkFailures       prometheus.Counter
	lengthHistogram     prometheus.Histogram
}

var (
	prometheusMetricsInstance *PrometheusEngineMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogram gets an existing histogram or creates a new one if it doesn't exist
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		// If it's not an AlreadyRegisteredError, use promauto which handles this gracefully
		return promauto.NewHistogram(opts)
	}
	return h
}

// getOrCreateCounter gets an existing counter or creates a new one if it doesn't exist
func getOrCreateCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Counter)
		}
		return promauto.NewCounter(opts)
	}
	return c
}

// getOrCreateCounterVec gets an existing counter vector or creates a new one if it doesn't exist
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusEngineMetrics creates a new Prometheus-based metrics recorder.
// It initializes and registers all required Prometheus metrics.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusEngineMetrics() *PrometheusEngineMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusEngineMetrics{
			documentsCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "documents_summarized_total",
				Help: "Total number of summarize invocations by result and path (direct or map_reduce)",
			}, []string{"status", "path"}),
			chunksHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "document_summary_chunks",
				Help:    "Distribution of first-round chunk counts per document",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
			}),
			roundsHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "document_summary_reduce_rounds",
				Help:    "Distribution of consolidation rounds per document",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			}),
			generationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "document_summary_generation_duration_seconds",
				Help:    "Time taken by a single generation call",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			}),
			chunkFailures: getOrCreateCounter(prometheus.CounterOpts{
				Name: "document_summary_chunk_failures_total",
				Help: "Total number of chunk summarization failures, including retried ones",
			}),
			lengthHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "document_summary_length_characters",
				Help:    "Distribution of final summary lengths in characters (Unicode runes)",
				Buckets: []float64{100, 300, 500, 700, 900, 1100, 1500, 2000, 4000},
			}),
		}
	})
	return prometheusMetricsInstance
}

// RecordDocument counts a finished summarize invocation.
// Path is "direct" or "map_reduce".
func (p *PrometheusEngineMetrics) RecordDocument(path string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.documentsCounter.WithLabelValues(status, path).Inc()
}

// RecordChunkCount records how many chunks the splitter produced.
func (p *PrometheusEngineMetrics) RecordChunkCount(n int) {
	p.chunksHistogram.Observe(float64(n))
}

// RecordReduceRounds records how many consolidation rounds a document needed.
func (p *PrometheusEngineMetrics) RecordReduceRounds(n int) {
	p.roundsHistogram.Observe(float64(n))
}

// RecordGenerationDuration records the time taken by one generation call.
func (p *PrometheusEngineMetrics) RecordGenerationDuration(duration time.Duration) {
	p.generationHistogram.Observe(duration.Seconds())
}

// RecordChunkFailure increments the chunk failure counter.
func (p *PrometheusEngineMetrics) RecordChunkFailure() {
	p.chunkFailures.Inc()
}

// RecordSummaryLength records the length of the final summary in runes.
func (p *PrometheusEngineMetrics) RecordSummaryLength(length int) {
	p.lengthHistogram.Observe(float64(length))
}
