package summarize

import (
	"context"
	"strings"
	"sync"
	"time"

	"doc-digest/internal/domain/entity"
)

// fakeCapability is a deterministic ModelCapability for tests. Tokens are
// whitespace-separated words, which keeps token counts monotonic in prefix
// length the way a real tokenizer is.
type fakeCapability struct {
	mu            sync.Mutex
	tokenFn       func(text string) (int, error)
	generateFn    func(prompt string, params entity.GenerationParams) (string, error)
	generateCalls []string
	tokenCalls    int
}

func wordTokens(text string) int {
	return len(strings.Fields(text))
}

func (f *fakeCapability) TokenCount(_ context.Context, text string) (int, error) {
	f.mu.Lock()
	f.tokenCalls++
	f.mu.Unlock()
	if f.tokenFn != nil {
		return f.tokenFn(text)
	}
	return wordTokens(text), nil
}

func (f *fakeCapability) Generate(_ context.Context, prompt string, params entity.GenerationParams) (string, error) {
	f.mu.Lock()
	f.generateCalls = append(f.generateCalls, prompt)
	f.mu.Unlock()
	if f.generateFn != nil {
		return f.generateFn(prompt, params)
	}
	return "generated summary", nil
}

func (f *fakeCapability) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.generateCalls...)
}

// recordingMetrics captures recorded values for assertions.
type recordingMetrics struct {
	documents     []string
	chunkCounts   []int
	reduceRounds  []int
	durations     int
	chunkFailures int
	lengths       []int
}

func (r *recordingMetrics) RecordDocument(path string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	r.documents = append(r.documents, path+"/"+status)
}

func (r *recordingMetrics) RecordChunkCount(n int)                  { r.chunkCounts = append(r.chunkCounts, n) }
func (r *recordingMetrics) RecordReduceRounds(n int)                { r.reduceRounds = append(r.reduceRounds, n) }
func (r *recordingMetrics) RecordGenerationDuration(time.Duration)  { r.durations++ }
func (r *recordingMetrics) RecordChunkFailure()                     { r.chunkFailures++ }
func (r *recordingMetrics) RecordSummaryLength(length int)          { r.lengths = append(r.lengths, length) }
