package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	logger := NewLogger()
	require.NotNil(t, logger)
}

func TestNewTextLogger(t *testing.T) {
	logger := NewTextLogger()
	require.NotNil(t, logger)
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	logger := NewLogger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestWithFields(t *testing.T) {
	logger := NewLogger()
	enriched := WithFields(logger, map[string]interface{}{
		"component": "engine",
		"chunks":    4,
	})

	require.NotNil(t, enriched)
	assert.NotSame(t, logger, enriched)
}

func TestLoggerContextRoundTrip(t *testing.T) {
	logger := NewLogger()
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, FromContext(ctx))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
