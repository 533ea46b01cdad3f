// Package text provides utilities for text measurement and analysis.
// This package includes reusable functions for character and word counting
// that are shared across the statistics, report and summarization features.
package text

import "strings"

// CountRunes counts the number of Unicode characters (runes) in the given text.
// This function correctly handles multi-byte characters by counting runes
// instead of bytes, so summary-length diagnostics stay accurate for
// non-ASCII documents.
func CountRunes(text string) int {
	return len([]rune(text))
}

// CountWords counts whitespace-separated words in the given text.
// Consecutive whitespace is treated as a single separator; an empty or
// all-whitespace string counts zero words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
