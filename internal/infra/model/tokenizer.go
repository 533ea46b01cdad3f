// Package model provides ModelCapability implementations: adapters for the
// OpenAI and Anthropic APIs with circuit breaker, retry and rate limiting,
// plus a deterministic offline capability for dry runs and tests.
package model

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used for client-side token counting.
const DefaultEncoding = "cl100k_base"

// Tokenizer counts tokens locally with a tiktoken BPE encoding. Counting
// client-side keeps the splitter's boundary probes off the network; the
// count is exact for OpenAI models and a close approximation for others.
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenizer loads the named BPE encoding, e.g. "cl100k_base".
func NewTokenizer(encodingName string) (*Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encodingName, err)
	}
	return &Tokenizer{encoding: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}
