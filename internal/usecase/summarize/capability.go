// Package summarize implements the token-budgeted map-reduce summarization
// engine. It decides whether a document fits in one model call, splits it
// into bounded chunks when it does not, summarizes each chunk independently,
// and consolidates partial summaries into a final result.
//
// The engine consumes a ModelCapability and is otherwise model-agnostic:
// any conforming implementation (remote API adapter, local inference engine,
// deterministic test double) can be substituted.
package summarize

import (
	"context"
	"time"

	"doc-digest/internal/domain/entity"
)

// ModelCapability is the two-method capability the engine consumes.
// It is injected by the surrounding application; the engine never
// constructs one. One logical session is used for the whole Summarize
// call; concurrent callers must serialize externally.
type ModelCapability interface {
	// TokenCount measures the token length of text as seen by the
	// model's tokenizer.
	TokenCount(ctx context.Context, text string) (int, error)

	// Generate produces text for the given prompt with the given
	// generation parameters. The call blocks until the model responds.
	Generate(ctx context.Context, prompt string, params entity.GenerationParams) (string, error)
}

// MetricsRecorder receives engine-level metrics. The interface keeps the
// engine free of any metrics backend; inject a mock in tests or the
// Prometheus recorder from internal/observability/metrics in production.
type MetricsRecorder interface {
	// RecordDocument counts a finished summarize invocation.
	// Path is "direct" or "map_reduce".
	RecordDocument(path string, success bool)

	// RecordChunkCount records how many chunks the splitter produced.
	RecordChunkCount(n int)

	// RecordReduceRounds records how many consolidation rounds were needed.
	RecordReduceRounds(n int)

	// RecordGenerationDuration records the time taken by one generation call.
	RecordGenerationDuration(duration time.Duration)

	// RecordChunkFailure counts a chunk summarization failure.
	RecordChunkFailure()

	// RecordSummaryLength records the final summary length in runes.
	RecordSummaryLength(length int)
}

// NoopMetrics is a MetricsRecorder that discards everything.
type NoopMetrics struct{}

// RecordDocument implements MetricsRecorder.
func (NoopMetrics) RecordDocument(string, bool) {}

// RecordChunkCount implements MetricsRecorder.
func (NoopMetrics) RecordChunkCount(int) {}

// RecordReduceRounds implements MetricsRecorder.
func (NoopMetrics) RecordReduceRounds(int) {}

// RecordGenerationDuration implements MetricsRecorder.
func (NoopMetrics) RecordGenerationDuration(time.Duration) {}

// RecordChunkFailure implements MetricsRecorder.
func (NoopMetrics) RecordChunkFailure() {}

// RecordSummaryLength implements MetricsRecorder.
func (NoopMetrics) RecordSummaryLength(int) {}
