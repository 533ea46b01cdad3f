package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"

	"doc-digest/internal/domain/entity"
	"doc-digest/internal/resilience/circuitbreaker"
	"doc-digest/internal/resilience/retry"
)

const defaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude implements the model capability against Anthropic's Messages API.
// Token counting uses the local tiktoken encoding: Anthropic tokenizes
// differently, but the count only steers budget decisions and the encodings
// track each other closely enough for that, while a server-side count would
// cost one round trip per splitter probe.
type Claude struct {
	client         anthropic.Client
	model          string
	tokenizer      *Tokenizer
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *RateLimiter
	logger         *slog.Logger
}

// NewClaude creates a Claude-backed capability from the given configuration.
func NewClaude(cfg Config, logger *slog.Logger) (*Claude, error) {
	tokenizer, err := NewTokenizer(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrCapabilityUnavailable, err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultClaudeModel
	}

	logger.Info("initialized claude capability",
		slog.String("model", model),
		slog.String("encoding", cfg.Encoding))

	return &Claude{
		client:         anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:          model,
		tokenizer:      tokenizer,
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.ModelAPIConfig(),
		limiter:        NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		logger:         logger,
	}, nil
}

// TokenCount counts tokens locally with the configured encoding.
func (c *Claude) TokenCount(_ context.Context, text string) (int, error) {
	return c.tokenizer.Count(text), nil
}

// Generate runs one Messages API call for the given prompt.
func (c *Claude) Generate(ctx context.Context, prompt string, params entity.GenerationParams) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	var result string

	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doGenerate(ctx, prompt, params)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				c.logger.WarnContext(ctx, "claude circuit breaker open, request rejected",
					slog.String("state", c.circuitBreaker.State().String()))
				return retry.Permanent(fmt.Errorf("%w: claude circuit breaker open", entity.ErrCapabilityUnavailable))
			}
			return err
		}
		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", retryErr
	}

	return result, nil
}

// doGenerate performs the raw API call without retry or circuit breaker.
// The Messages API takes temperature, top-p and top-k directly; repetition
// penalty has no equivalent and is dropped.
func (c *Claude) doGenerate(ctx context.Context, prompt string, params entity.GenerationParams) (string, error) {
	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(params.MaxNewTokens),
		Temperature: anthropic.Float(float64(params.Temperature)),
		TopP:        anthropic.Float(float64(params.TopP)),
		TopK:        anthropic.Int(int64(params.TopK)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorContext(ctx, "claude generation failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	output := textBlock.Text
	c.logger.InfoContext(ctx, "claude generation completed",
		slog.Duration("duration", duration),
		slog.Int("output_runes", len([]rune(output))))

	return output, nil
}
