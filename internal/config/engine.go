// Package config holds configuration for the summarization engine and the
// model providers. Configuration is env-first with an optional YAML file for
// the generation-parameter bundle; environment variables take precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"doc-digest/internal/domain/entity"
)

// EngineConfig holds the token budgets and bounds for one summarization engine.
type EngineConfig struct {
	// ContextLimit is the maximum token count a single generation call can
	// accept. Default: 32768.
	ContextLimit int `yaml:"context_limit"`

	// ChunkBudget is the per-chunk token budget. Must be strictly less than
	// ContextLimit to reserve headroom for prompt scaffolding and output
	// tokens. Default: 28000.
	ChunkBudget int `yaml:"chunk_budget"`

	// MaxReductionDepth bounds the consolidation loop. Default: 5.
	MaxReductionDepth int `yaml:"max_reduction_depth"`

	// GenerationTimeout is an optional per-generation-call timeout.
	// Zero disables the timeout; an unbounded hang in the capability is then
	// an accepted operational risk.
	GenerationTimeout time.Duration `yaml:"generation_timeout"`

	// Generation is the parameter bundle passed to every generation call.
	Generation entity.GenerationParams `yaml:"-"`
}

// generationFile mirrors entity.GenerationParams for YAML decoding.
type generationFile struct {
	Temperature       *float32 `yaml:"temperature"`
	TopK              *int     `yaml:"top_k"`
	TopP              *float32 `yaml:"top_p"`
	RepetitionPenalty *float32 `yaml:"repetition_penalty"`
	MaxNewTokens      *int     `yaml:"max_new_tokens"`
}

// DefaultEngineConfig returns the built-in defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ContextLimit:      32768,
		ChunkBudget:       28000,
		MaxReductionDepth: 5,
		GenerationTimeout: 0,
		Generation: entity.GenerationParams{
			Temperature:       0.3,
			TopK:              40,
			TopP:              0.9,
			RepetitionPenalty: 1.1,
			MaxNewTokens:      512,
		},
	}
}

// LoadEngineConfig builds the engine configuration from defaults, an optional
// YAML file named by ENGINE_CONFIG_FILE, and environment variable overrides,
// in that order of precedence (env wins). The result is validated; an invalid
// configuration is rejected before any model call can happen.
//
// Environment variables:
//   - ENGINE_CONTEXT_LIMIT: context window in tokens (default: 32768)
//   - ENGINE_CHUNK_BUDGET: per-chunk token budget (default: 28000)
//   - ENGINE_MAX_REDUCTION_DEPTH: consolidation depth bound (default: 5)
//   - ENGINE_GENERATION_TIMEOUT: per-call timeout, e.g. "120s" (default: disabled)
//   - GEN_TEMPERATURE, GEN_TOP_K, GEN_TOP_P, GEN_REPETITION_PENALTY,
//     GEN_MAX_NEW_TOKENS: generation parameters
func LoadEngineConfig() (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if path := os.Getenv("ENGINE_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return EngineConfig{}, fmt.Errorf("load engine config file: %w", err)
		}
	}

	cfg.ContextLimit = getEnvInt("ENGINE_CONTEXT_LIMIT", cfg.ContextLimit)
	cfg.ChunkBudget = getEnvInt("ENGINE_CHUNK_BUDGET", cfg.ChunkBudget)
	cfg.MaxReductionDepth = getEnvInt("ENGINE_MAX_REDUCTION_DEPTH", cfg.MaxReductionDepth)
	cfg.GenerationTimeout = getEnvDuration("ENGINE_GENERATION_TIMEOUT", cfg.GenerationTimeout)

	cfg.Generation.Temperature = getEnvFloat32("GEN_TEMPERATURE", cfg.Generation.Temperature)
	cfg.Generation.TopK = getEnvInt("GEN_TOP_K", cfg.Generation.TopK)
	cfg.Generation.TopP = getEnvFloat32("GEN_TOP_P", cfg.Generation.TopP)
	cfg.Generation.RepetitionPenalty = getEnvFloat32("GEN_REPETITION_PENALTY", cfg.Generation.RepetitionPenalty)
	cfg.Generation.MaxNewTokens = getEnvInt("GEN_MAX_NEW_TOKENS", cfg.Generation.MaxNewTokens)

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, err
	}

	return cfg, nil
}

// Validate checks configuration correctness. Violations are reported as
// entity.ValidationError, which matches entity.ErrInvalidConfiguration.
func (c EngineConfig) Validate() error {
	if c.ContextLimit <= 0 {
		return &entity.ValidationError{Field: "context_limit", Message: "must be positive"}
	}
	if c.ChunkBudget <= 0 {
		return &entity.ValidationError{Field: "chunk_budget", Message: "must be positive"}
	}
	if c.ChunkBudget >= c.ContextLimit {
		return &entity.ValidationError{
			Field:   "chunk_budget",
			Message: fmt.Sprintf("must be strictly less than context_limit (%d >= %d)", c.ChunkBudget, c.ContextLimit),
		}
	}
	if c.MaxReductionDepth <= 0 {
		return &entity.ValidationError{Field: "max_reduction_depth", Message: "must be positive"}
	}
	if c.GenerationTimeout < 0 {
		return &entity.ValidationError{Field: "generation_timeout", Message: "must not be negative"}
	}
	if c.Generation.Temperature < 0 {
		return &entity.ValidationError{Field: "temperature", Message: "must not be negative"}
	}
	if c.Generation.TopP <= 0 || c.Generation.TopP > 1 {
		return &entity.ValidationError{Field: "top_p", Message: "must be in (0.0, 1.0]"}
	}
	if c.Generation.TopK < 0 {
		return &entity.ValidationError{Field: "top_k", Message: "must not be negative"}
	}
	if c.Generation.RepetitionPenalty <= 0 {
		return &entity.ValidationError{Field: "repetition_penalty", Message: "must be positive"}
	}
	if c.Generation.MaxNewTokens <= 0 {
		return &entity.ValidationError{Field: "max_new_tokens", Message: "must be positive"}
	}
	return nil
}

// getEnvInt parses integer environment variable with default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvFloat32 parses float environment variable with default.
func getEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 32)
		if err == nil {
			return float32(parsed)
		}
	}
	return defaultValue
}

// getEnvDuration parses duration environment variable with default.
// Supports formats like "30s", "1m", "2h".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
