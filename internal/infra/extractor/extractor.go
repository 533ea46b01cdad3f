// Package extractor turns input files into plain text for the summarization
// engine. Supported formats: PDF, plain text and Markdown.
package extractor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat reports an input file whose extension has no extractor.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// Info describes the extracted document.
type Info struct {
	// Path is the input file path.
	Path string

	// Pages is the page count. Zero for formats without pages.
	Pages int

	// Words is the whitespace-separated word count of the extracted text.
	Words int

	// Bytes is the input file size.
	Bytes int64
}

// Extractor extracts plain text and basic file information from one input
// file format.
type Extractor interface {
	Extract(path string) (string, Info, error)
}

// ForPath selects an extractor by file extension.
func ForPath(path string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return &PDF{}, nil
	case ".txt", ".md":
		return &Plain{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
