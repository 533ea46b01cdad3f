package model

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"doc-digest/internal/domain/entity"
	"doc-digest/internal/usecase/summarize"
)

// Provider names accepted by MODEL_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderEcho   = "echo"
)

// Config selects and parameterizes the model capability backend.
type Config struct {
	// Provider is one of "openai", "claude" or "echo".
	Provider string

	// Model is the provider-specific model identifier. Empty selects the
	// provider's default.
	Model string

	// APIKey authenticates against the provider. Unused by echo.
	APIKey string

	// Encoding is the tiktoken encoding used for client-side token counting.
	Encoding string

	// RequestsPerSecond and Burst bound the request rate against the
	// provider API.
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig reads the capability configuration from environment variables.
//
// Environment variables:
//   - MODEL_PROVIDER: "openai", "claude" or "echo" (default: "echo")
//   - MODEL_NAME: provider model identifier (provider default when empty)
//   - OPENAI_API_KEY / ANTHROPIC_API_KEY: provider credentials
//   - TOKENIZER_ENCODING: tiktoken encoding name (default: "cl100k_base")
//   - MODEL_RATE_LIMIT: sustained requests per second (default: 2.0)
//   - MODEL_RATE_BURST: burst capacity (default: 5)
func LoadConfig() Config {
	cfg := Config{
		Provider:          getEnvString("MODEL_PROVIDER", ProviderEcho),
		Model:             os.Getenv("MODEL_NAME"),
		Encoding:          getEnvString("TOKENIZER_ENCODING", DefaultEncoding),
		RequestsPerSecond: getEnvFloat("MODEL_RATE_LIMIT", 2.0),
		Burst:             getEnvIntValue("MODEL_RATE_BURST", 5),
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderClaude:
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return cfg
}

// New builds the capability selected by cfg.Provider.
func New(cfg Config, logger *slog.Logger) (summarize.ModelCapability, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", entity.ErrCapabilityUnavailable)
		}
		return NewOpenAI(cfg, logger)

	case ProviderClaude:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY not set", entity.ErrCapabilityUnavailable)
		}
		return NewClaude(cfg, logger)

	case ProviderEcho:
		return NewEcho(), nil

	default:
		return nil, &entity.ValidationError{
			Field:   "model_provider",
			Message: fmt.Sprintf("unknown provider %q", cfg.Provider),
		}
	}
}

func getEnvString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("invalid float environment variable, using default",
			slog.String("key", key),
			slog.String("value", value))
		return fallback
	}
	return parsed
}

func getEnvIntValue(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer environment variable, using default",
			slog.String("key", key),
			slog.String("value", value))
		return fallback
	}
	return parsed
}
