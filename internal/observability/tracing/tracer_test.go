package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTracer(t *testing.T) {
	require.NotNil(t, GetTracer())
}

func TestGetTracer_StartsSpan(t *testing.T) {
	ctx, span := GetTracer().Start(context.Background(), "test-span")

	require.NotNil(t, span)
	assert.NotNil(t, ctx)
	span.End()
}

func TestInitProvider_ReturnsShutdown(t *testing.T) {
	shutdown := InitProvider()
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(context.Background()))
}
