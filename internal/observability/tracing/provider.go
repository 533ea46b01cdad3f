package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// InitProvider installs an SDK tracer provider as the global OpenTelemetry
// provider and returns a shutdown function that flushes pending spans.
// Without this call the global tracer is a no-op, which is the intended
// default when tracing is disabled.
func InitProvider() func(context.Context) error {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
