// Package observability provides production-grade observability infrastructure
// including structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics for the summarization pipeline
//   - tracing: OpenTelemetry tracing integration
//
// Example usage:
//
//	import (
//	    "doc-digest/internal/observability/logging"
//	    "doc-digest/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    recorder := metrics.NewPrometheusEngineMetrics()
//	    recorder.RecordChunkCount(4)
//	}
package observability
