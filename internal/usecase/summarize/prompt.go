package summarize

import "fmt"

// Prompt templates use role/instruction framing so the same scaffolding
// works for chat-tuned and instruction-tuned models. The capability adapter
// may translate the framing into its provider's native message format.
const (
	directSystem      = "You are an assistant that summarizes documents clearly and objectively."
	chunkSystem       = "You summarize passages of a longer document clearly and concisely."
	consolidateSystem = "You consolidate multiple partial summaries into a single coherent summary."
)

// buildPrompt assembles the shared role/instruction scaffolding.
func buildPrompt(system, instruction, text string) string {
	return fmt.Sprintf("### System:\n%s\n\n### Instruction:\n%s\n\n%s\n\n### Response:\n", system, instruction, text)
}

// buildDirectPrompt frames a whole document for a single summarization call.
func buildDirectPrompt(text string) string {
	return buildPrompt(directSystem, "Summarize the following text:", text)
}

// buildChunkPrompt frames one chunk of a larger document.
func buildChunkPrompt(text string) string {
	return buildPrompt(chunkSystem, "Summarize the following passage:", text)
}

// buildConsolidationPrompt frames a set of partial summaries for consolidation.
func buildConsolidationPrompt(text string) string {
	return buildPrompt(consolidateSystem, "Consolidate these summaries:", text)
}
