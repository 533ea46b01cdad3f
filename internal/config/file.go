package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// engineFile is the YAML layout of an engine configuration file.
// All fields are optional; absent fields keep their previous value.
type engineFile struct {
	ContextLimit      *int            `yaml:"context_limit"`
	ChunkBudget       *int            `yaml:"chunk_budget"`
	MaxReductionDepth *int            `yaml:"max_reduction_depth"`
	GenerationTimeout *string         `yaml:"generation_timeout"`
	Generation        *generationFile `yaml:"generation"`
}

// applyFile overlays values from a YAML file onto the configuration.
func (c *EngineConfig) applyFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator configuration
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var file engineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if file.ContextLimit != nil {
		c.ContextLimit = *file.ContextLimit
	}
	if file.ChunkBudget != nil {
		c.ChunkBudget = *file.ChunkBudget
	}
	if file.MaxReductionDepth != nil {
		c.MaxReductionDepth = *file.MaxReductionDepth
	}
	if file.GenerationTimeout != nil {
		d, err := time.ParseDuration(*file.GenerationTimeout)
		if err != nil {
			return fmt.Errorf("generation_timeout: %w", err)
		}
		c.GenerationTimeout = d
	}
	if file.Generation != nil {
		g := file.Generation
		if g.Temperature != nil {
			c.Generation.Temperature = *g.Temperature
		}
		if g.TopK != nil {
			c.Generation.TopK = *g.TopK
		}
		if g.TopP != nil {
			c.Generation.TopP = *g.TopP
		}
		if g.RepetitionPenalty != nil {
			c.Generation.RepetitionPenalty = *g.RepetitionPenalty
		}
		if g.MaxNewTokens != nil {
			c.Generation.MaxNewTokens = *g.MaxNewTokens
		}
	}

	return nil
}
