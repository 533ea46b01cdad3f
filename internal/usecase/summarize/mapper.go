package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"doc-digest/internal/domain/entity"
	"doc-digest/internal/resilience/retry"
)

// MapStage summarizes one chunk via the generation capability.
// A failed or degenerate generation is retried once locally (retry.ChunkConfig)
// before it escalates as entity.ChunkFailedError; the orchestrator treats
// that as fatal for the whole invocation.
type MapStage struct {
	capability ModelCapability
	params     entity.GenerationParams
	timeout    time.Duration
	retryCfg   retry.Config
	logger     *slog.Logger
	metrics    MetricsRecorder
}

// NewMapStage creates a map stage with the given generation parameters.
// A zero timeout disables per-call deadlines.
func NewMapStage(capability ModelCapability, params entity.GenerationParams, timeout time.Duration, logger *slog.Logger, metrics MetricsRecorder) *MapStage {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &MapStage{
		capability: capability,
		params:     params,
		timeout:    timeout,
		retryCfg:   retry.ChunkConfig(),
		logger:     logger,
		metrics:    metrics,
	}
}

// MapChunk summarizes a single chunk and tags the result with the chunk index.
func (m *MapStage) MapChunk(ctx context.Context, chunk entity.Chunk) (entity.PartialSummary, error) {
	prompt := buildChunkPrompt(chunk.Text)

	output, err := m.generateWithRetry(ctx, prompt)
	if err != nil {
		m.metrics.RecordChunkFailure()
		m.logger.ErrorContext(ctx, "chunk summarization failed",
			slog.Int("chunk_index", chunk.Index),
			slog.Any("error", err))
		return entity.PartialSummary{}, &entity.ChunkFailedError{Index: chunk.Index, Cause: err}
	}

	tokens, err := m.capability.TokenCount(ctx, output)
	if err != nil {
		return entity.PartialSummary{}, fmt.Errorf("%w: tokenizer: %v", entity.ErrCapabilityUnavailable, err)
	}

	return entity.PartialSummary{
		SourceChunkIndex: chunk.Index,
		Text:             output,
		TokenCount:       tokens,
	}, nil
}

// generateWithRetry runs one generation call under the local retry budget.
// Degenerate (empty or whitespace-only) output counts as a failure: the
// stage never silently substitutes empty content.
func (m *MapStage) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var output string

	err := retry.WithBackoff(ctx, m.retryCfg, func() error {
		callCtx := ctx
		if m.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, m.timeout)
			defer cancel()
		}

		start := time.Now()
		generated, genErr := m.capability.Generate(callCtx, prompt, m.params)
		m.metrics.RecordGenerationDuration(time.Since(start))

		if genErr != nil {
			if errors.Is(genErr, entity.ErrCapabilityUnavailable) {
				return retry.Permanent(genErr)
			}
			return genErr
		}
		if strings.TrimSpace(generated) == "" {
			return errors.New("model returned degenerate output")
		}

		output = generated
		return nil
	})
	if err != nil {
		return "", err
	}

	return output, nil
}
