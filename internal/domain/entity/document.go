// Package entity defines the core domain entities and typed errors for the application.
// It contains the fundamental objects of the summarization pipeline — Document, Chunk,
// PartialSummary and FinalSummary — along with their validation rules.
package entity

// Document represents the raw input text of one summarization call,
// together with its measured token count. A Document is created from
// collaborator-supplied text at call time and is immutable once built.
type Document struct {
	Text       string
	TokenCount int
}

// Chunk is a bounded, ordered slice of the original document text.
// Chunks are produced in document order with contiguous indices starting
// at 0, and every chunk's token count fits within the chunk budget.
// Chunks carry exact adjacent substrings of the source text: concatenating
// chunk texts in index order reconstructs the input byte for byte.
type Chunk struct {
	Index      int
	Text       string
	TokenCount int
}

// PartialSummary is the summary of a single chunk, tagged with the index
// of the chunk it originated from. Ordering by SourceChunkIndex is
// preserved through every reduction round.
type PartialSummary struct {
	SourceChunkIndex int
	Text             string
	TokenCount       int
}

// FinalSummary is the terminal artifact of a summarize call.
// SourceChunkCount reports how many first-round chunks contributed
// to the summary (1 when the document fit in a single call).
// The value is owned by the caller once returned.
type FinalSummary struct {
	Text             string
	SourceChunkCount int
}

// TokenAnalysis is the result of measuring a text against the model's
// context limit.
type TokenAnalysis struct {
	TokenCount   int
	ContextLimit int
	ExceedsLimit bool
}

// GenerationParams is the externally configured parameter bundle passed
// to every generation call. The engine never hard-codes these values.
type GenerationParams struct {
	Temperature       float32
	TopK              int
	TopP              float32
	RepetitionPenalty float32
	MaxNewTokens      int
}

// TotalTokens sums the token counts of the given partial summaries.
func TotalTokens(partials []PartialSummary) int {
	total := 0
	for _, p := range partials {
		total += p.TokenCount
	}
	return total
}
