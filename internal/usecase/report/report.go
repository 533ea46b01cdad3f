// Package report assembles the final Markdown report for an analyzed
// document and writes it next to the input file.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"doc-digest/internal/infra/extractor"
	"doc-digest/internal/usecase/analyze"
)

// Input carries everything the report renders.
type Input struct {
	Info    extractor.Info
	Stats   analyze.Stats
	Outline string
	Summary string
}

// Build renders the Markdown report.
func Build(in Input) string {
	var b strings.Builder

	b.WriteString("## GENERAL INFORMATION\n")
	fmt.Fprintf(&b, "- **File**: %s\n", in.Info.Path)
	if in.Info.Pages > 0 {
		fmt.Fprintf(&b, "- **Pages**: %d\n", in.Info.Pages)
	}
	fmt.Fprintf(&b, "- **Words**: %d\n", in.Stats.WordCount)
	fmt.Fprintf(&b, "- **Size in bytes**: %d\n", in.Info.Bytes)
	fmt.Fprintf(&b, "- **Vocabulary size**: %d\n", in.Stats.VocabularySize)

	b.WriteString("\n### MOST FREQUENT WORDS\n")
	for _, entry := range in.Stats.TopWords {
		fmt.Fprintf(&b, "- %s: %d\n", entry.Word, entry.Count)
	}

	b.WriteString("\n### DOCUMENT STRUCTURE\n")
	b.WriteString(strings.TrimSpace(in.Outline))
	b.WriteString("\n")

	b.WriteString("\n### SUMMARY\n")
	b.WriteString(strings.TrimSpace(in.Summary))
	b.WriteString("\n")

	return b.String()
}

// Save writes content as <base>_report.md in the input file's directory and
// returns the written path.
func Save(inputPath, content string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := filepath.Dir(inputPath)
	outputPath := filepath.Join(dir, base+"_report.md")

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return outputPath, nil
}
