package document

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

var (
	// ErrUnsupportedFormat is returned for file types no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrTooLarge is returned when a file exceeds the configured size limit.
	ErrTooLarge = errors.New("document exceeds size limit")
	// ErrTooManyPages is returned when a paginated document exceeds the page limit.
	ErrTooManyPages = errors.New("document exceeds page limit")
	// ErrNoText is returned when a document yields no extractable text.
	ErrNoText = errors.New("document contains no extractable text")
)

// Format identifies the source format of a document.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Extracted is the plain text of a document plus the metadata found while extracting it.
type Extracted struct {
	Text   string
	Format Format
	Title  string
	Pages  int
	Size   int64
}

// Extractor turns raw file content into plain text.
type Extractor interface {
	Extract(ctx context.Context, name string, content []byte) (*Extracted, error)
}

// Limits bounds what the registry accepts.
type Limits struct {
	MaxBytes int64
	MaxPages int
}

// DefaultLimits returns the default limits: 50MB and 500 pages.
func DefaultLimits() Limits {
	return Limits{MaxBytes: 50 * 1024 * 1024, MaxPages: 500}
}

// Registry dispatches extraction by file extension.
// It implements Extractor.
type Registry struct {
	limits     Limits
	extractors map[string]Extractor
}

// NewRegistry creates a Registry with the PDF, Markdown and plain text extractors registered.
func NewRegistry(limits Limits) *Registry {
	r := &Registry{
		limits:     limits,
		extractors: make(map[string]Extractor),
	}

	markdown := NewMarkdownExtractor()
	text := NewTextExtractor()
	r.Register(".pdf", NewPDFExtractor(limits.MaxPages))
	r.Register(".md", markdown)
	r.Register(".markdown", markdown)
	r.Register(".txt", text)
	r.Register(".text", text)
	return r
}

// Register associates an extension (with leading dot) with an extractor.
func (r *Registry) Register(ext string, e Extractor) {
	r.extractors[strings.ToLower(ext)] = e
}

// Supported reports whether name has a registered extension.
func (r *Registry) Supported(name string) bool {
	_, ok := r.extractors[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Validate checks the file extension and size before any content is read.
func (r *Registry) Validate(name string, size int64) error {
	if !r.Supported(name) {
		ext := filepath.Ext(name)
		if ext == "" {
			ext = "(none)"
		}
		return fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(r.Extensions(), ", "))
	}
	if size <= 0 {
		return fmt.Errorf("%w: %s is empty", ErrNoText, name)
	}
	if r.limits.MaxBytes > 0 && size > r.limits.MaxBytes {
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, name, size, r.limits.MaxBytes)
	}
	return nil
}

// Extract validates the file and runs the extractor registered for its extension.
func (r *Registry) Extract(ctx context.Context, name string, content []byte) (*Extracted, error) {
	if err := r.Validate(name, int64(len(content))); err != nil {
		return nil, err
	}

	extractor := r.extractors[strings.ToLower(filepath.Ext(name))]
	extracted, err := extractor.Extract(ctx, name, content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(extracted.Text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoText, name)
	}
	extracted.Size = int64(len(content))
	if extracted.Title == "" {
		extracted.Title = TitleFromFilename(name)
	}
	return extracted, nil
}

// NormalizeWhitespace collapses every run of whitespace into a single space and trims the ends.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TitleFromFilename derives a title by removing the extension and capitalizing words.
func TitleFromFilename(filename string) string {
	name := filepath.Base(filename)
	if ext := filepath.Ext(name); ext != "" {
		name = name[:len(name)-len(ext)]
	}
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)

	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
