package document

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextExtractor reads UTF-8 plain text files.
type TextExtractor struct{}

// NewTextExtractor creates a plain text extractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract returns the file content unchanged apart from a leading byte order mark.
func (e *TextExtractor) Extract(ctx context.Context, name string, content []byte) (*Extracted, error) {
	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnsupportedFormat, name)
	}

	return &Extracted{
		Text:   string(content),
		Format: FormatText,
		Title:  TitleFromFilename(name),
		Pages:  1,
	}, nil
}
