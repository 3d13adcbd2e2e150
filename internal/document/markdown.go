package document

import (
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor extracts readable text from Markdown using the goldmark AST.
type MarkdownExtractor struct {
	parser goldmark.Markdown
}

// NewMarkdownExtractor creates a Markdown extractor with table support.
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Extract returns the document text with markup removed, one block per line.
func (e *MarkdownExtractor) Extract(ctx context.Context, name string, content []byte) (*Extracted, error) {
	doc := e.parser.Parser().Parse(text.NewReader(content))

	return &Extracted{
		Text:   collectText(doc, content),
		Format: FormatMarkdown,
		Title:  extractTitle(doc, content, name),
		Pages:  1,
	}, nil
}

// extractTitle picks the first level 1 heading, then the first level 2
// heading, then falls back to the filename.
func extractTitle(doc ast.Node, content []byte, filename string) string {
	var firstH1, firstH2 string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if heading, ok := n.(*ast.Heading); ok {
			headingText := extractTextFromNode(heading, content)
			if heading.Level == 1 && firstH1 == "" {
				firstH1 = headingText
				return ast.WalkStop, nil
			}
			if heading.Level == 2 && firstH2 == "" {
				firstH2 = headingText
			}
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	if firstH2 != "" {
		return firstH2
	}
	return TitleFromFilename(filename)
}

// blockWriter accumulates text and starts each block on a new line.
type blockWriter struct {
	builder strings.Builder
	last    byte
}

func (w *blockWriter) write(s string) {
	if s == "" {
		return
	}
	w.builder.WriteString(s)
	w.last = s[len(s)-1]
}

func (w *blockWriter) newline() {
	if w.builder.Len() > 0 && w.last != '\n' {
		w.write("\n")
	}
}

func collectText(doc ast.Node, content []byte) string {
	var w blockWriter

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock, *ast.ListItem, *ast.Blockquote:
			w.newline()
		case *ast.Text:
			w.write(string(node.Segment.Value(content)))
			if node.SoftLineBreak() || node.HardLineBreak() {
				w.write(" ")
			}
		case *ast.String:
			w.write(string(node.Value))
		case *ast.AutoLink:
			w.write(string(node.URL(content)))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			w.newline()
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				w.write(string(line.Value(content)))
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		default:
			kindName := n.Kind().String()
			if kindName == "TableRow" || kindName == "TableHeader" {
				w.newline()
				w.write(extractTableRowText(n, content))
				return ast.WalkSkipChildren, nil
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(w.builder.String())
}

// extractTextFromNode extracts text content from a node and its children.
func extractTextFromNode(n ast.Node, content []byte) string {
	var textBuilder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			textBuilder.Write(v.Segment.Value(content))
		case *ast.String:
			textBuilder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(textBuilder.String())
}

// extractTableRowText extracts text from a table row, formatting cells with pipe separators.
func extractTableRowText(row ast.Node, content []byte) string {
	cells := make([]string, 0, row.ChildCount())
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, extractTextFromNode(cell, content))
	}
	return strings.Join(cells, " | ")
}
