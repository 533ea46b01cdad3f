package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"doc-digest/internal/config"
	"doc-digest/internal/domain/entity"
	"doc-digest/internal/observability/tracing"
)

// state is one node of the orchestrator's state machine.
type state int

const (
	stateInit state = iota
	stateTokenCheck
	stateDirect
	stateMap
	stateReduce
	stateDone
	stateFailed
)

// String returns the state name for diagnostics.
func (s state) String() string {
	switch s {
	case stateInit:
		return "INIT"
	case stateTokenCheck:
		return "TOKEN_CHECK"
	case stateDirect:
		return "DIRECT"
	case stateMap:
		return "MAP"
	case stateReduce:
		return "REDUCE"
	case stateDone:
		return "DONE"
	case stateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// pathDirect and pathMapReduce label the two summarization paths in
// diagnostics and metrics.
const (
	pathDirect    = "direct"
	pathMapReduce = "map_reduce"
)

// Engine is the summarization orchestrator. It composes the analyzer,
// splitter, map stage and reduce stage into a single Summarize operation.
// The engine is stateless across invocations; all intermediate artifacts
// are scoped to one call.
type Engine struct {
	capability ModelCapability
	cfg        config.EngineConfig
	analyzer   *TokenBudgetAnalyzer
	splitter   *ChunkSplitter
	mapper     *MapStage
	reducer    *ReduceStage
	logger     *slog.Logger
	metrics    MetricsRecorder
}

// New creates an engine for the given capability and configuration.
// The configuration is validated up front; budgets are never checked again
// mid-flight. A nil logger falls back to slog.Default, a nil metrics
// recorder to NoopMetrics.
func New(capability ModelCapability, cfg config.EngineConfig, logger *slog.Logger, metrics MetricsRecorder) (*Engine, error) {
	if capability == nil {
		return nil, fmt.Errorf("%w: no model capability provided", entity.ErrCapabilityUnavailable)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	analyzer := NewTokenBudgetAnalyzer(capability, cfg.ContextLimit, logger)
	splitter := NewChunkSplitter(capability, logger)
	mapper := NewMapStage(capability, cfg.Generation, cfg.GenerationTimeout, logger, metrics)
	reducer := NewReduceStage(capability, splitter, mapper, cfg.Generation, cfg.GenerationTimeout, logger)

	return &Engine{
		capability: capability,
		cfg:        cfg,
		analyzer:   analyzer,
		splitter:   splitter,
		mapper:     mapper,
		reducer:    reducer,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// Summarize produces a single coherent summary for the given document text.
// Documents within the context limit take the direct path (exactly one
// generation call); larger documents are split, mapped chunk by chunk in
// index order, and reduced, with the reduce loop bounded by
// MaxReductionDepth. Chunks are processed sequentially: the capability is a
// single shared compute resource and concurrent invocations are not
// attempted. No partial summary is ever returned as if it were complete.
func (e *Engine) Summarize(ctx context.Context, text string) (*entity.FinalSummary, error) {
	requestID := uuid.New().String()
	logger := e.logger.With(slog.String("request_id", requestID))

	var (
		current          = stateTokenCheck
		analysis         entity.TokenAnalysis
		partials         []entity.PartialSummary
		final            *entity.FinalSummary
		failure          error
		path             = pathDirect
		sourceChunkCount = 1
		reduceRounds     = 0
	)

	logger.InfoContext(ctx, "summarization started",
		slog.Int("text_runes", len([]rune(text))))

	for current != stateDone && current != stateFailed {
		switch current {
		case stateTokenCheck:
			a, err := e.runTokenCheck(ctx, text)
			if err != nil {
				failure = err
				current = stateFailed
				break
			}
			analysis = a
			if analysis.ExceedsLimit {
				path = pathMapReduce
				current = stateMap
			} else {
				current = stateDirect
			}

		case stateDirect:
			f, err := e.runDirect(ctx, logger, text)
			if err != nil {
				failure = err
				current = stateFailed
				break
			}
			final = f
			current = stateDone

		case stateMap:
			p, chunkCount, err := e.runMap(ctx, logger, text)
			if err != nil {
				failure = err
				current = stateFailed
				break
			}
			partials = p
			sourceChunkCount = chunkCount
			current = stateReduce

		case stateReduce:
			reduceRounds++
			if reduceRounds > e.cfg.MaxReductionDepth {
				failure = fmt.Errorf("%w: after %d rounds", entity.ErrReductionDepthExceeded, e.cfg.MaxReductionDepth)
				current = stateFailed
				break
			}
			f, next, err := e.runReduce(ctx, logger, partials, reduceRounds)
			if err != nil {
				failure = err
				current = stateFailed
				break
			}
			if f != nil {
				f.SourceChunkCount = sourceChunkCount
				final = f
				current = stateDone
				break
			}
			partials = next
			// Stay in REDUCE for the next round.

		default:
			failure = fmt.Errorf("unexpected orchestrator state %s", current)
			current = stateFailed
		}
	}

	e.metrics.RecordReduceRounds(reduceRounds)

	if current == stateFailed {
		e.metrics.RecordDocument(path, false)
		logger.ErrorContext(ctx, "summarization failed",
			slog.String("path", path),
			slog.Any("error", failure))
		return nil, failure
	}

	e.metrics.RecordDocument(path, true)
	e.metrics.RecordSummaryLength(len([]rune(final.Text)))
	logger.InfoContext(ctx, "summarization finished",
		slog.String("path", path),
		slog.Int("source_chunks", final.SourceChunkCount),
		slog.Int("reduce_rounds", reduceRounds),
		slog.Int("summary_runes", len([]rune(final.Text))))

	return final, nil
}

// runTokenCheck measures the document against the context limit.
func (e *Engine) runTokenCheck(ctx context.Context, text string) (entity.TokenAnalysis, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "summarize.token_check")
	defer span.End()

	return e.analyzer.Analyze(ctx, text)
}

// runDirect issues one generation call over the whole document.
func (e *Engine) runDirect(ctx context.Context, logger *slog.Logger, text string) (*entity.FinalSummary, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "summarize.direct")
	defer span.End()

	logger.InfoContext(ctx, "document fits context, summarizing directly")

	callCtx := ctx
	if e.cfg.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.cfg.GenerationTimeout)
		defer cancel()
	}

	start := time.Now()
	output, err := e.capability.Generate(callCtx, buildDirectPrompt(text), e.cfg.Generation)
	e.metrics.RecordGenerationDuration(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("direct summarization: %w", err)
	}
	if strings.TrimSpace(output) == "" {
		return nil, fmt.Errorf("direct summarization: model returned degenerate output")
	}

	return &entity.FinalSummary{Text: output, SourceChunkCount: 1}, nil
}

// runMap splits the document and summarizes every chunk in index order.
func (e *Engine) runMap(ctx context.Context, logger *slog.Logger, text string) ([]entity.PartialSummary, int, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "summarize.map")
	defer span.End()

	chunks, err := e.splitter.Split(ctx, text, e.cfg.ChunkBudget)
	if err != nil {
		return nil, 0, err
	}
	e.metrics.RecordChunkCount(len(chunks))

	partials := make([]entity.PartialSummary, 0, len(chunks))
	for _, chunk := range chunks {
		logger.InfoContext(ctx, "summarizing chunk",
			slog.Int("chunk", chunk.Index+1),
			slog.Int("total", len(chunks)),
			slog.Int("chunk_tokens", chunk.TokenCount))

		partial, err := e.mapper.MapChunk(ctx, chunk)
		if err != nil {
			return nil, 0, err
		}
		partials = append(partials, partial)
	}

	return partials, len(chunks), nil
}

// runReduce executes one bounded consolidation round.
func (e *Engine) runReduce(ctx context.Context, logger *slog.Logger, partials []entity.PartialSummary, round int) (*entity.FinalSummary, []entity.PartialSummary, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "summarize.reduce")
	defer span.End()

	logger.InfoContext(ctx, "reduce round",
		slog.Int("round", round),
		slog.Int("max_depth", e.cfg.MaxReductionDepth))

	return e.reducer.Reduce(ctx, partials, e.cfg.ChunkBudget)
}
