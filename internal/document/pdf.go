package document

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageSource is the subset of a parsed PDF the extractor needs. Pages are 1-based.
type pageSource interface {
	NumPage() int
	PageText(page int) (string, error)
}

// PDFExtractor extracts page text from PDF files.
type PDFExtractor struct {
	maxPages int
	open     func(content []byte) (pageSource, error)
}

// NewPDFExtractor creates a PDF extractor that rejects documents with more than maxPages pages.
// maxPages <= 0 disables the check.
func NewPDFExtractor(maxPages int) *PDFExtractor {
	return &PDFExtractor{
		maxPages: maxPages,
		open:     openPDF,
	}
}

// Extract returns the text of every page, each prefixed with a "--- Page N ---" marker.
func (e *PDFExtractor) Extract(ctx context.Context, name string, content []byte) (*Extracted, error) {
	source, err := e.open(content)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", name, err)
	}

	pages := source.NumPage()
	if e.maxPages > 0 && pages > e.maxPages {
		return nil, fmt.Errorf("%w: %s has %d pages, limit is %d", ErrTooManyPages, name, pages, e.maxPages)
	}

	var builder strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := source.PageText(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d of %s: %w", i, name, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if builder.Len() > 0 {
			builder.WriteString("\n\n")
		}
		fmt.Fprintf(&builder, "--- Page %d ---\n%s", i, text)
	}

	return &Extracted{
		Text:   builder.String(),
		Format: FormatPDF,
		Title:  TitleFromFilename(name),
		Pages:  pages,
	}, nil
}

// ledongthucSource adapts a github.com/ledongthuc/pdf reader to pageSource.
type ledongthucSource struct {
	reader *pdf.Reader
}

func openPDF(content []byte) (src pageSource, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	return &ledongthucSource{reader: reader}, nil
}

func (s *ledongthucSource) NumPage() int {
	return s.reader.NumPage()
}

func (s *ledongthucSource) PageText(page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed page: %v", r)
		}
	}()

	p := s.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}
