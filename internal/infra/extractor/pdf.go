package extractor

import (
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"

	"doc-digest/internal/utils/text"
)

// PDF extracts plain text from PDF files.
type PDF struct{}

// Extract reads the whole document's plain text and page count.
func (p *PDF) Extract(path string) (string, Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", Info{}, fmt.Errorf("stat input: %w", err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", Info{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", Info{}, fmt.Errorf("extract pdf text: %w", err)
	}

	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", Info{}, fmt.Errorf("read pdf text: %w", err)
	}

	content := string(raw)
	info := Info{
		Path:  path,
		Pages: reader.NumPage(),
		Words: text.CountWords(content),
		Bytes: stat.Size(),
	}

	return content, info, nil
}
