package model

import (
	"context"
	"strings"

	"doc-digest/internal/domain/entity"
)

// echoMaxWords caps extractive output so every round of processing shrinks
// its input.
const echoMaxWords = 64

// Echo is a deterministic offline capability for dry runs and tests. Tokens
// are whitespace-separated words and generation is extractive: the leading
// words of the prompt's payload. No network, no credentials, stable output
// for identical input.
type Echo struct{}

// NewEcho creates the offline echo capability.
func NewEcho() *Echo {
	return &Echo{}
}

// TokenCount counts whitespace-separated words.
func (e *Echo) TokenCount(_ context.Context, text string) (int, error) {
	return len(strings.Fields(text)), nil
}

// Generate returns the leading half of the prompt payload's words. Halving
// guarantees every summarization round shrinks its input, so recursive
// consolidation always converges.
func (e *Echo) Generate(_ context.Context, prompt string, params entity.GenerationParams) (string, error) {
	words := strings.Fields(extractPayload(prompt))
	if len(words) == 0 {
		return "(empty document)", nil
	}

	limit := (len(words) + 1) / 2
	if limit > echoMaxWords {
		limit = echoMaxWords
	}
	if params.MaxNewTokens > 0 && params.MaxNewTokens < limit {
		limit = params.MaxNewTokens
	}

	return strings.Join(words[:limit], " "), nil
}

// extractPayload strips the role/instruction scaffolding around the text
// being summarized. An unrecognized prompt shape is used as-is.
func extractPayload(prompt string) string {
	payload := prompt

	if idx := strings.Index(payload, "### Instruction:\n"); idx >= 0 {
		payload = payload[idx+len("### Instruction:\n"):]
		// Drop the instruction line itself.
		if idx := strings.Index(payload, "\n\n"); idx >= 0 {
			payload = payload[idx+2:]
		}
	}
	if idx := strings.LastIndex(payload, "\n\n### Response:"); idx >= 0 {
		payload = payload[:idx]
	}

	return payload
}
