// Package analyze computes lightweight text statistics and document
// structure: word counts, vocabulary, frequency rankings and a numbered
// outline of Markdown-style headings.
package analyze

import (
	"sort"
	"strings"
	"unicode"

	"doc-digest/internal/utils/text"
)

// DefaultTopWords is the frequency ranking size used when none is given.
const DefaultTopWords = 10

// WordFrequency is one entry of a frequency ranking.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Stats summarizes the word-level shape of a document.
type Stats struct {
	// WordCount is the raw whitespace-separated word count.
	WordCount int `json:"word_count"`

	// VocabularySize is the number of distinct cleaned words.
	VocabularySize int `json:"vocabulary_size"`

	// TopWords ranks the most frequent cleaned words, highest first.
	TopWords []WordFrequency `json:"top_words"`
}

// ComputeStats analyzes the document text. topN bounds the frequency
// ranking; non-positive values fall back to DefaultTopWords.
func ComputeStats(input string, topN int) Stats {
	if topN <= 0 {
		topN = DefaultTopWords
	}

	cleaned := cleanWords(input)

	freq := make(map[string]int, len(cleaned))
	for _, w := range cleaned {
		freq[w]++
	}

	ranking := make([]WordFrequency, 0, len(freq))
	for w, n := range freq {
		ranking = append(ranking, WordFrequency{Word: w, Count: n})
	}
	// Ties break alphabetically so the ranking is stable across runs.
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].Word < ranking[j].Word
	})
	if len(ranking) > topN {
		ranking = ranking[:topN]
	}

	return Stats{
		WordCount:      text.CountWords(input),
		VocabularySize: len(freq),
		TopWords:       ranking,
	}
}

// cleanWords lowercases the text, strips surrounding punctuation and drops
// non-alphabetic tokens and stop words.
func cleanWords(input string) []string {
	var cleaned []string
	for _, w := range strings.Fields(strings.ToLower(input)) {
		w = strings.Trim(w, `.,!?;:"'()[]{}`)
		if w == "" || !isAlpha(w) {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		cleaned = append(cleaned, w)
	}
	return cleaned
}

func isAlpha(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
