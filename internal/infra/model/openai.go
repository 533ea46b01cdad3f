package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"doc-digest/internal/domain/entity"
	"doc-digest/internal/resilience/circuitbreaker"
	"doc-digest/internal/resilience/retry"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAI implements the model capability against OpenAI's chat completion
// API. Token counting happens client-side with the tiktoken encoding, so
// splitter probes never hit the network. Generation calls go through a rate
// limiter, a circuit breaker and retry with backoff.
type OpenAI struct {
	client         *openai.Client
	model          string
	tokenizer      *Tokenizer
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *RateLimiter
	logger         *slog.Logger
}

// NewOpenAI creates an OpenAI-backed capability from the given configuration.
func NewOpenAI(cfg Config, logger *slog.Logger) (*OpenAI, error) {
	tokenizer, err := NewTokenizer(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrCapabilityUnavailable, err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	logger.Info("initialized openai capability",
		slog.String("model", model),
		slog.String("encoding", cfg.Encoding))

	return &OpenAI{
		client:         openai.NewClient(cfg.APIKey),
		model:          model,
		tokenizer:      tokenizer,
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.ModelAPIConfig(),
		limiter:        NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		logger:         logger,
	}, nil
}

// TokenCount counts tokens locally with the configured encoding.
func (o *OpenAI) TokenCount(_ context.Context, text string) (int, error) {
	return o.tokenizer.Count(text), nil
}

// Generate runs one chat completion call for the given prompt.
// An open circuit breaker reports the capability as unavailable so callers
// stop retrying instead of hammering a failing API.
func (o *OpenAI) Generate(ctx context.Context, prompt string, params entity.GenerationParams) (string, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	var result string

	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		cbResult, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doGenerate(ctx, prompt, params)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				o.logger.WarnContext(ctx, "openai circuit breaker open, request rejected",
					slog.String("state", o.circuitBreaker.State().String()))
				return retry.Permanent(fmt.Errorf("%w: openai circuit breaker open", entity.ErrCapabilityUnavailable))
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
// RepetitionPenalty maps onto frequency penalty (OpenAI centers it at 0,
// local runtimes at 1). The API has no top-k knob; top-k is dropped.
func (o *OpenAI) doGenerate(ctx context.Context, prompt string, params entity.GenerationParams) (string, error) {
	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		Temperature:      params.Temperature,
		TopP:             params.TopP,
		FrequencyPenalty: params.RepetitionPenalty - 1,
		MaxTokens:        params.MaxNewTokens,
	})

	duration := time.Since(start)

	if err != nil {
		o.logger.ErrorContext(ctx, "openai generation failed",
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned no choices")
	}

	output := resp.Choices[0].Message.Content
	o.logger.InfoContext(ctx, "openai generation completed",
		slog.Duration("duration", duration),
		slog.Int("output_runes", len([]rune(output))))

	return output, nil
}
