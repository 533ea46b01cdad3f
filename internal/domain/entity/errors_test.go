package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkFailedError_MatchesSentinel(t *testing.T) {
	err := &ChunkFailedError{Index: 3, Cause: errors.New("api error")}

	assert.True(t, errors.Is(err, ErrChunkSummarizationFailed))
	assert.False(t, errors.Is(err, ErrCapabilityUnavailable))
}

func TestChunkFailedError_ReportsIndex(t *testing.T) {
	err := &ChunkFailedError{Index: 1, Cause: errors.New("empty output")}

	assert.Contains(t, err.Error(), "chunk 1")
	assert.Contains(t, err.Error(), "empty output")
}

func TestChunkFailedError_UnwrapsThroughWrapping(t *testing.T) {
	cause := errors.New("timeout")
	err := fmt.Errorf("map stage: %w", &ChunkFailedError{Index: 7, Cause: cause})

	var chunkErr *ChunkFailedError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, 7, chunkErr.Index)
	assert.True(t, errors.Is(err, cause))
}

func TestValidationError_MatchesInvalidConfiguration(t *testing.T) {
	err := &ValidationError{Field: "chunk_budget", Message: "must be positive"}

	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
	assert.Contains(t, err.Error(), "chunk_budget")
}

func TestTotalTokens(t *testing.T) {
	partials := []PartialSummary{
		{SourceChunkIndex: 0, Text: "a", TokenCount: 120},
		{SourceChunkIndex: 1, Text: "b", TokenCount: 80},
	}

	assert.Equal(t, 200, TotalTokens(partials))
	assert.Equal(t, 0, TotalTokens(nil))
}
