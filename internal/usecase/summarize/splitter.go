package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"doc-digest/internal/domain/entity"
)

// ChunkSplitter partitions oversized text into bounded, ordered chunks.
//
// Splitting policy: each chunk is the longest prefix of the remaining text
// that fits the token budget, backed off to the nearest paragraph break,
// or failing that the nearest sentence end, before the budget. When no
// boundary exists the cut is a hard cut at the token boundary.
//
// Overlap policy: none. Chunks are exact adjacent substrings of the input,
// so concatenating chunk texts in index order reproduces the input byte
// for byte. Given identical text and budget the boundaries are stable.
type ChunkSplitter struct {
	capability ModelCapability
	logger     *slog.Logger
}

// NewChunkSplitter creates a splitter backed by the given capability's tokenizer.
func NewChunkSplitter(capability ModelCapability, logger *slog.Logger) *ChunkSplitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChunkSplitter{capability: capability, logger: logger}
}

// Split partitions text into chunks whose token counts all fit chunkBudget.
// Indices are contiguous starting at 0.
func (s *ChunkSplitter) Split(ctx context.Context, text string, chunkBudget int) ([]entity.Chunk, error) {
	if chunkBudget <= 0 {
		return nil, &entity.ValidationError{Field: "chunk_budget", Message: "must be positive"}
	}

	var chunks []entity.Chunk
	rest := text

	for len(rest) > 0 {
		count, err := s.tokenCount(ctx, rest)
		if err != nil {
			return nil, err
		}

		if count <= chunkBudget {
			chunks = append(chunks, entity.Chunk{
				Index:      len(chunks),
				Text:       rest,
				TokenCount: count,
			})
			break
		}

		cut, cutTokens, err := s.cutPoint(ctx, rest, chunkBudget)
		if err != nil {
			return nil, err
		}

		chunks = append(chunks, entity.Chunk{
			Index:      len(chunks),
			Text:       rest[:cut],
			TokenCount: cutTokens,
		})
		rest = rest[cut:]
	}

	s.logger.InfoContext(ctx, "text split into chunks",
		slog.Int("chunks", len(chunks)),
		slog.Int("chunk_budget", chunkBudget))

	return chunks, nil
}

// cutPoint finds the byte offset to cut the next chunk at, together with the
// token count of the resulting chunk text. The offset is always a rune
// boundary and always makes progress.
func (s *ChunkSplitter) cutPoint(ctx context.Context, rest string, chunkBudget int) (int, int, error) {
	hard, err := s.largestFittingPrefix(ctx, rest, chunkBudget)
	if err != nil {
		return 0, 0, err
	}
	if hard == 0 {
		// Not even a single rune fits the budget; the configuration cannot
		// make progress on this input.
		return 0, 0, &entity.ValidationError{
			Field:   "chunk_budget",
			Message: fmt.Sprintf("budget %d too small to fit any prefix of the text", chunkBudget),
		}
	}

	cut := preferSemanticBoundary(rest, hard)

	tokens, err := s.tokenCount(ctx, rest[:cut])
	if err != nil {
		return 0, 0, err
	}
	return cut, tokens, nil
}

// largestFittingPrefix binary-searches the longest prefix of rest whose token
// count does not exceed chunkBudget. Token count is monotonic in prefix
// length, which makes the search exact. The returned offset is a rune
// boundary; 0 means no non-empty prefix fits.
func (s *ChunkSplitter) largestFittingPrefix(ctx context.Context, rest string, chunkBudget int) (int, error) {
	// Candidate cut positions are rune starts plus the end of the string.
	bounds := runeBoundaries(rest)

	lo, hi := 0, len(bounds)-1 // bounds[0] == 0 is the empty prefix
	for lo < hi {
		mid := (lo + hi + 1) / 2
		count, err := s.tokenCount(ctx, rest[:bounds[mid]])
		if err != nil {
			return 0, err
		}
		if count <= chunkBudget {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return bounds[lo], nil
}

func (s *ChunkSplitter) tokenCount(ctx context.Context, text string) (int, error) {
	count, err := s.capability.TokenCount(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("%w: tokenizer: %v", entity.ErrCapabilityUnavailable, err)
	}
	return count, nil
}

// runeBoundaries returns every byte offset at which a cut keeps both sides
// valid UTF-8, in increasing order, starting with 0 and ending with len(s).
func runeBoundaries(s string) []int {
	bounds := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(s))
	return bounds
}

// preferSemanticBoundary backs a hard cut off to the nearest semantic
// boundary before it: a paragraph break first, then a sentence end, then a
// line break. The separator stays with the left chunk so the concatenation
// invariant holds. When no boundary exists the hard cut is kept.
func preferSemanticBoundary(text string, hardCut int) int {
	window := text[:hardCut]

	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return idx + len("\n\n")
	}

	if idx := lastSentenceEnd(window); idx > 0 {
		return idx
	}

	if idx := strings.LastIndexByte(window, '\n'); idx > 0 {
		return idx + 1
	}

	return hardCut
}

// lastSentenceEnd returns the offset just past the last sentence-ending
// punctuation followed by whitespace, or 0 if there is none.
func lastSentenceEnd(window string) int {
	for i := len(window) - 1; i > 0; i-- {
		c := window[i]
		if c != ' ' && c != '\n' && c != '\t' {
			continue
		}
		prev := window[i-1]
		if prev == '.' || prev == '!' || prev == '?' {
			return i + 1
		}
	}
	return 0
}
