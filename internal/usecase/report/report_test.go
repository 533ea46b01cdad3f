package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-digest/internal/infra/extractor"
	"doc-digest/internal/usecase/analyze"
)

func sampleInput() Input {
	return Input{
		Info: extractor.Info{
			Path:  "/data/paper.pdf",
			Pages: 12,
			Bytes: 34567,
		},
		Stats: analyze.Stats{
			WordCount:      4200,
			VocabularySize: 900,
			TopWords: []analyze.WordFrequency{
				{Word: "routing", Count: 31},
				{Word: "protocol", Count: 27},
			},
		},
		Outline: "Title: Paper\n1. Introduction\n2. Results",
		Summary: "A short summary.",
	}
}

func TestBuild(t *testing.T) {
	content := Build(sampleInput())

	assert.Contains(t, content, "## GENERAL INFORMATION")
	assert.Contains(t, content, "- **File**: /data/paper.pdf")
	assert.Contains(t, content, "- **Pages**: 12")
	assert.Contains(t, content, "- **Words**: 4200")
	assert.Contains(t, content, "- **Vocabulary size**: 900")
	assert.Contains(t, content, "- routing: 31")
	assert.Contains(t, content, "- protocol: 27")
	assert.Contains(t, content, "### DOCUMENT STRUCTURE\nTitle: Paper")
	assert.Contains(t, content, "### SUMMARY\nA short summary.")
}

func TestBuild_OmitsPagesForPagelessFormats(t *testing.T) {
	in := sampleInput()
	in.Info.Pages = 0

	assert.NotContains(t, Build(in), "**Pages**")
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "paper.pdf")

	outputPath, err := Save(inputPath, "# report body\n")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "paper_report.md"), outputPath)

	written, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "# report body\n", string(written))
}
