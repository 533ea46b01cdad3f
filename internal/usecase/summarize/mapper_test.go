package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-digest/internal/domain/entity"
)

func TestMapChunk_Success(t *testing.T) {
	capability := &fakeCapability{}
	metrics := &recordingMetrics{}
	mapper := NewMapStage(capability, entity.GenerationParams{}, 0, nil, metrics)

	chunk := entity.Chunk{Index: 3, Text: "chunk body text", TokenCount: 3}
	partial, err := mapper.MapChunk(context.Background(), chunk)
	require.NoError(t, err)

	assert.Equal(t, 3, partial.SourceChunkIndex)
	assert.Equal(t, "generated summary", partial.Text)
	assert.Equal(t, 2, partial.TokenCount)

	calls := capability.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "chunk body text")
	assert.Equal(t, 1, metrics.durations)
	assert.Zero(t, metrics.chunkFailures)
}

func TestMapChunk_RetriesOnceThenSucceeds(t *testing.T) {
	attempts := 0
	capability := &fakeCapability{
		generateFn: func(string, entity.GenerationParams) (string, error) {
			attempts++
			if attempts == 1 {
				return "", errors.New("transient model error")
			}
			return "recovered summary", nil
		},
	}
	metrics := &recordingMetrics{}
	mapper := NewMapStage(capability, entity.GenerationParams{}, 0, nil, metrics)

	partial, err := mapper.MapChunk(context.Background(), entity.Chunk{Index: 0, Text: "text"})
	require.NoError(t, err)

	assert.Equal(t, "recovered summary", partial.Text)
	assert.Equal(t, 2, attempts)
	assert.Zero(t, metrics.chunkFailures)
}

func TestMapChunk_FailureAfterRetryIsChunkFailedError(t *testing.T) {
	capability := &fakeCapability{
		generateFn: func(string, entity.GenerationParams) (string, error) {
			return "", errors.New("model keeps failing")
		},
	}
	metrics := &recordingMetrics{}
	mapper := NewMapStage(capability, entity.GenerationParams{}, 0, nil, metrics)

	_, err := mapper.MapChunk(context.Background(), entity.Chunk{Index: 1, Text: "text"})
	require.Error(t, err)

	assert.True(t, errors.Is(err, entity.ErrChunkSummarizationFailed))

	var chunkErr *entity.ChunkFailedError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, 1, chunkErr.Index)

	assert.Len(t, capability.calls(), 2, "exactly one local retry")
	assert.Equal(t, 1, metrics.chunkFailures)
}

func TestMapChunk_DegenerateOutputIsFailure(t *testing.T) {
	capability := &fakeCapability{
		generateFn: func(string, entity.GenerationParams) (string, error) {
			return "   \n\t", nil
		},
	}
	mapper := NewMapStage(capability, entity.GenerationParams{}, 0, nil, nil)

	_, err := mapper.MapChunk(context.Background(), entity.Chunk{Index: 0, Text: "text"})
	require.Error(t, err)

	assert.True(t, errors.Is(err, entity.ErrChunkSummarizationFailed))
	assert.Contains(t, err.Error(), "degenerate")
}

func TestMapChunk_CapabilityUnavailableAbortsWithoutRetry(t *testing.T) {
	capability := &fakeCapability{
		generateFn: func(string, entity.GenerationParams) (string, error) {
			return "", fmt.Errorf("%w: model backend down", entity.ErrCapabilityUnavailable)
		},
	}
	mapper := NewMapStage(capability, entity.GenerationParams{}, 0, nil, nil)

	_, err := mapper.MapChunk(context.Background(), entity.Chunk{Index: 2, Text: "text"})
	require.Error(t, err)

	assert.True(t, errors.Is(err, entity.ErrCapabilityUnavailable))
	assert.Len(t, capability.calls(), 1, "unavailable capability must not be retried")
}

func TestMapChunk_TokenizerFailureOnOutput(t *testing.T) {
	capability := &fakeCapability{
		tokenFn: func(text string) (int, error) {
			if strings.Contains(text, "generated") {
				return 0, errors.New("tokenizer broke")
			}
			return wordTokens(text), nil
		},
	}
	mapper := NewMapStage(capability, entity.GenerationParams{}, 0, nil, nil)

	_, err := mapper.MapChunk(context.Background(), entity.Chunk{Index: 0, Text: "text"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrCapabilityUnavailable))
}
