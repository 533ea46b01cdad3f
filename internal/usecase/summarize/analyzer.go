package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"doc-digest/internal/domain/entity"
)

// TokenBudgetAnalyzer measures the token length of a text against the
// model's context limit. Pure measurement: no mutation, no side effects
// beyond diagnostic logging.
type TokenBudgetAnalyzer struct {
	capability   ModelCapability
	contextLimit int
	logger       *slog.Logger
}

// NewTokenBudgetAnalyzer creates an analyzer for the given context limit.
func NewTokenBudgetAnalyzer(capability ModelCapability, contextLimit int, logger *slog.Logger) *TokenBudgetAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenBudgetAnalyzer{
		capability:   capability,
		contextLimit: contextLimit,
		logger:       logger,
	}
}

// Analyze measures text and reports whether it exceeds the context limit.
// A tokenizer failure is fatal for the whole summarization call and is
// reported as entity.ErrCapabilityUnavailable.
func (a *TokenBudgetAnalyzer) Analyze(ctx context.Context, text string) (entity.TokenAnalysis, error) {
	count, err := a.capability.TokenCount(ctx, text)
	if err != nil {
		return entity.TokenAnalysis{}, fmt.Errorf("%w: tokenizer: %v", entity.ErrCapabilityUnavailable, err)
	}

	analysis := entity.TokenAnalysis{
		TokenCount:   count,
		ContextLimit: a.contextLimit,
		ExceedsLimit: count > a.contextLimit,
	}

	a.logger.InfoContext(ctx, "token budget analyzed",
		slog.Int("token_count", analysis.TokenCount),
		slog.Int("context_limit", analysis.ContextLimit),
		slog.Bool("exceeds_limit", analysis.ExceedsLimit))

	return analysis, nil
}
