package summarize

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-digest/internal/config"
	"doc-digest/internal/domain/entity"
)

func testConfig(contextLimit, chunkBudget, maxDepth int) config.EngineConfig {
	cfg := config.DefaultEngineConfig()
	cfg.ContextLimit = contextLimit
	cfg.ChunkBudget = chunkBudget
	cfg.MaxReductionDepth = maxDepth
	return cfg
}

func TestNew_NilCapabilityIsUnavailable(t *testing.T) {
	_, err := New(nil, config.DefaultEngineConfig(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrCapabilityUnavailable))
}

func TestNew_InvalidConfigurationRejected(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.ChunkBudget = cfg.ContextLimit + 1

	_, err := New(&fakeCapability{}, cfg, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInvalidConfiguration))
}

// A 45230-token document against a 32768 context limit and a 28000 chunk
// budget must go map-reduce with exactly two chunks and finish in one
// consolidation round.
func TestSummarize_OversizedDocumentTakesMapReducePath(t *testing.T) {
	capability := &fakeCapability{}
	metrics := &recordingMetrics{}
	engine, err := New(capability, testConfig(32768, 28000, 5), nil, metrics)
	require.NoError(t, err)

	text := strings.Repeat("word ", 45230)
	final, err := engine.Summarize(context.Background(), text)
	require.NoError(t, err)

	require.NotNil(t, final)
	assert.Equal(t, 2, final.SourceChunkCount)
	assert.Equal(t, "generated summary", final.Text)

	// Two map calls in chunk order, then a single consolidation call.
	calls := capability.calls()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[0], "Summarize the following passage:")
	assert.Contains(t, calls[1], "Summarize the following passage:")
	assert.Contains(t, calls[2], "Consolidate these summaries:")

	assert.Equal(t, []string{"map_reduce/success"}, metrics.documents)
	assert.Equal(t, []int{2}, metrics.chunkCounts)
	assert.Equal(t, []int{1}, metrics.reduceRounds)
}

// A document under the context limit is summarized with exactly one
// generation call and never touches the splitter.
func TestSummarize_SmallDocumentTakesDirectPath(t *testing.T) {
	capability := &fakeCapability{}
	metrics := &recordingMetrics{}
	engine, err := New(capability, testConfig(32768, 28000, 5), nil, metrics)
	require.NoError(t, err)

	text := strings.Repeat("word ", 10000)
	final, err := engine.Summarize(context.Background(), text)
	require.NoError(t, err)

	require.NotNil(t, final)
	assert.Equal(t, 1, final.SourceChunkCount)

	calls := capability.calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0], "Summarize the following text:")

	assert.Equal(t, []string{"direct/success"}, metrics.documents)
	assert.Empty(t, metrics.chunkCounts)
	assert.Equal(t, []int{0}, metrics.reduceRounds)
}

func TestSummarize_EmptyTextGoesDirect(t *testing.T) {
	capability := &fakeCapability{}
	engine, err := New(capability, testConfig(32768, 28000, 5), nil, nil)
	require.NoError(t, err)

	final, err := engine.Summarize(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 1, final.SourceChunkCount)
	assert.Len(t, capability.calls(), 1)
}

// A chunk that fails generation on both local attempts fails the whole
// invocation and reports which chunk broke. No partial result leaks out.
func TestSummarize_PersistentChunkFailureFailsInvocation(t *testing.T) {
	capability := &fakeCapability{
		generateFn: func(prompt string, _ entity.GenerationParams) (string, error) {
			if strings.Contains(prompt, "beta") {
				return "", errors.New("model choked on this chunk")
			}
			return "generated summary", nil
		},
	}
	metrics := &recordingMetrics{}
	engine, err := New(capability, testConfig(10, 8, 5), nil, metrics)
	require.NoError(t, err)

	// Splits into two chunks: the first carries "alpha", the second "beta".
	text := "alpha a1 a2 a3 a4 a5 a6 a7.\nbeta b1 b2 b3 b4 b5 b6"
	final, err := engine.Summarize(context.Background(), text)
	require.Error(t, err)
	assert.Nil(t, final)

	assert.True(t, errors.Is(err, entity.ErrChunkSummarizationFailed))
	var chunkErr *entity.ChunkFailedError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, 1, chunkErr.Index)

	// Chunk 0 succeeded once; chunk 1 used its one local retry and failed.
	assert.Len(t, capability.calls(), 3)
	assert.Equal(t, 1, metrics.chunkFailures)
	assert.Equal(t, []string{"map_reduce/failure"}, metrics.documents)
}

// Partials that keep shrinking but never fit the budget exhaust the bounded
// reduce loop.
func TestSummarize_ReductionDepthBound(t *testing.T) {
	var calls atomic.Int64
	capability := &fakeCapability{
		generateFn: func(string, entity.GenerationParams) (string, error) {
			n := calls.Add(1)
			// First round of five chunks yields 6-word partials, later
			// rounds shed one word per round: never under the 8-token
			// budget once joined, but always strictly shrinking.
			words := 6 - int(n-1)/5
			if words < 4 {
				words = 4
			}
			return strings.TrimSpace(strings.Repeat("s ", words)), nil
		},
	}
	metrics := &recordingMetrics{}
	engine, err := New(capability, testConfig(10, 8, 2), nil, metrics)
	require.NoError(t, err)

	text := strings.TrimSpace(strings.Repeat("w ", 40))
	final, err := engine.Summarize(context.Background(), text)
	require.Error(t, err)
	assert.Nil(t, final)

	assert.True(t, errors.Is(err, entity.ErrReductionDepthExceeded))
	assert.Equal(t, []int{3}, metrics.reduceRounds)
	assert.Equal(t, []string{"map_reduce/failure"}, metrics.documents)
}

// A recursive reduction that shrinks fast enough converges to a final
// summary within the depth bound.
func TestSummarize_RecursiveReductionConverges(t *testing.T) {
	var calls atomic.Int64
	capability := &fakeCapability{
		generateFn: func(string, entity.GenerationParams) (string, error) {
			if calls.Add(1) <= 5 {
				return strings.TrimSpace(strings.Repeat("s ", 6)), nil
			}
			return "s", nil
		},
	}
	metrics := &recordingMetrics{}
	engine, err := New(capability, testConfig(10, 8, 5), nil, metrics)
	require.NoError(t, err)

	text := strings.TrimSpace(strings.Repeat("w ", 40))
	final, err := engine.Summarize(context.Background(), text)
	require.NoError(t, err)

	require.NotNil(t, final)
	assert.Equal(t, "s", final.Text)
	assert.Equal(t, 5, final.SourceChunkCount)
	assert.Equal(t, []int{2}, metrics.reduceRounds)
	assert.Equal(t, []int{5}, metrics.chunkCounts)
}

func TestSummarize_StalledReductionFails(t *testing.T) {
	capability := &fakeCapability{
		generateFn: func(string, entity.GenerationParams) (string, error) {
			return strings.TrimSpace(strings.Repeat("s ", 9)), nil
		},
	}
	engine, err := New(capability, testConfig(10, 8, 5), nil, nil)
	require.NoError(t, err)

	text := strings.TrimSpace(strings.Repeat("w ", 40))
	_, err = engine.Summarize(context.Background(), text)
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrReductionStalled))
}

func TestSummarize_TokenizerFailureFailsInvocation(t *testing.T) {
	capability := &fakeCapability{
		tokenFn: func(string) (int, error) {
			return 0, errors.New("tokenizer gone")
		},
	}
	metrics := &recordingMetrics{}
	engine, err := New(capability, testConfig(32768, 28000, 5), nil, metrics)
	require.NoError(t, err)

	_, err = engine.Summarize(context.Background(), "some text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrCapabilityUnavailable))
	assert.Equal(t, []string{"direct/failure"}, metrics.documents)
}

// Same text, same configuration, deterministic capability: identical results.
func TestSummarize_Deterministic(t *testing.T) {
	text := strings.Repeat("word ", 45230)

	run := func() *entity.FinalSummary {
		engine, err := New(&fakeCapability{}, testConfig(32768, 28000, 5), nil, nil)
		require.NoError(t, err)
		final, err := engine.Summarize(context.Background(), text)
		require.NoError(t, err)
		return final
	}

	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("summarization is not deterministic (-first +second):\n%s", diff)
	}
}
