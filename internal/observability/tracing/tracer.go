// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created around the summarization stages (token check, map,
// reduce, consolidation) so long-running documents can be inspected in a
// tracing backend.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the doc-digest application.
var tracer = otel.Tracer("doc-digest")

// GetTracer returns the global tracer for creating spans.
// This tracer can be used throughout the application to create new spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "summarize.map")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}
