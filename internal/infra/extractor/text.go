package extractor

import (
	"fmt"
	"os"

	"doc-digest/internal/utils/text"
)

// Plain extracts text from .txt and .md files.
type Plain struct{}

// Extract reads the file as UTF-8 text.
func (p *Plain) Extract(path string) (string, Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", Info{}, fmt.Errorf("stat input: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", Info{}, fmt.Errorf("read input: %w", err)
	}

	content := string(raw)
	info := Info{
		Path:  path,
		Words: text.CountWords(content),
		Bytes: stat.Size(),
	}

	return content, info, nil
}
