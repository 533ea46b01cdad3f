package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"doc-digest/internal/domain/entity"
)

// partialDelimiter separates partial summaries inside a consolidation prompt.
// It is part of the reduce contract: changing it changes chunk boundaries in
// recursive rounds and therefore reproducibility.
const partialDelimiter = "\n\n"

// ReduceStage consolidates an ordered list of partial summaries into one
// text. A round either produces the final summary (one consolidation call)
// or, when the concatenation still exceeds the budget, re-chunks it and
// re-runs the map stage, yielding a smaller partial sequence for the next
// round. Every round must strictly shrink total token volume; a round that
// does not is reported as entity.ErrReductionStalled.
type ReduceStage struct {
	capability ModelCapability
	splitter   *ChunkSplitter
	mapper     *MapStage
	params     entity.GenerationParams
	timeout    time.Duration
	logger     *slog.Logger
}

// NewReduceStage creates a reduce stage reusing the given splitter and mapper
// for recursive rounds.
func NewReduceStage(capability ModelCapability, splitter *ChunkSplitter, mapper *MapStage, params entity.GenerationParams, timeout time.Duration, logger *slog.Logger) *ReduceStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReduceStage{
		capability: capability,
		splitter:   splitter,
		mapper:     mapper,
		params:     params,
		timeout:    timeout,
		logger:     logger,
	}
}

// Reduce runs one consolidation round. Exactly one of the first two return
// values is set: a final summary when the concatenation fit in a single
// call, or a strictly smaller partial sequence for another round.
// The final summary's SourceChunkCount is filled in by the orchestrator.
func (r *ReduceStage) Reduce(ctx context.Context, partials []entity.PartialSummary, chunkBudget int) (*entity.FinalSummary, []entity.PartialSummary, error) {
	texts := make([]string, len(partials))
	for i, p := range partials {
		texts[i] = p.Text
	}
	combined := strings.Join(texts, partialDelimiter)

	total, err := r.capability.TokenCount(ctx, combined)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: tokenizer: %v", entity.ErrCapabilityUnavailable, err)
	}

	r.logger.InfoContext(ctx, "consolidation round started",
		slog.Int("partials", len(partials)),
		slog.Int("combined_tokens", total),
		slog.Int("chunk_budget", chunkBudget))

	if total <= chunkBudget {
		final, err := r.consolidate(ctx, combined)
		if err != nil {
			return nil, nil, err
		}
		r.logger.InfoContext(ctx, "consolidation round finished",
			slog.Int("summary_runes", len([]rune(final))))
		return &entity.FinalSummary{Text: final}, nil, nil
	}

	next, err := r.remap(ctx, combined, chunkBudget)
	if err != nil {
		return nil, nil, err
	}

	// Convergence argument: each round replaces K inputs with at most K
	// shorter summaries. Enforced here so a non-shrinking model cannot
	// loop the orchestrator.
	if entity.TotalTokens(next) >= entity.TotalTokens(partials) {
		return nil, nil, fmt.Errorf("%w: round produced %d tokens from %d",
			entity.ErrReductionStalled, entity.TotalTokens(next), entity.TotalTokens(partials))
	}

	r.logger.InfoContext(ctx, "consolidation round finished",
		slog.Int("partials_in", len(partials)),
		slog.Int("partials_out", len(next)))

	return nil, next, nil
}

// consolidate issues the single consolidation generation call.
func (r *ReduceStage) consolidate(ctx context.Context, combined string) (string, error) {
	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	output, err := r.capability.Generate(callCtx, buildConsolidationPrompt(combined), r.params)
	if err != nil {
		return "", fmt.Errorf("consolidation call: %w", err)
	}
	if strings.TrimSpace(output) == "" {
		return "", fmt.Errorf("consolidation call: model returned degenerate output")
	}
	return output, nil
}

// remap re-chunks the combined partials and runs the map stage over the new
// chunks, in index order, producing the next round's partial sequence.
func (r *ReduceStage) remap(ctx context.Context, combined string, chunkBudget int) ([]entity.PartialSummary, error) {
	chunks, err := r.splitter.Split(ctx, combined, chunkBudget)
	if err != nil {
		return nil, err
	}

	next := make([]entity.PartialSummary, 0, len(chunks))
	for _, chunk := range chunks {
		r.logger.InfoContext(ctx, "re-mapping chunk",
			slog.Int("chunk", chunk.Index+1),
			slog.Int("total", len(chunks)))

		partial, err := r.mapper.MapChunk(ctx, chunk)
		if err != nil {
			return nil, err
		}
		next = append(next, partial)
	}

	return next, nil
}
