package document

import (
	"context"
	"strings"
	"testing"
)

func TestMarkdownExtractor_Extract(t *testing.T) {
	extractor := NewMarkdownExtractor()

	tests := []struct {
		name         string
		content      string
		filename     string
		wantTitle    string
		wantContains []string
		wantMissing  []string
	}{
		{
			name:         "h1 title and paragraphs",
			content:      "# Settlement Statement\n\nThe sale price is $450,000.\n\nCommission is 3%.",
			filename:     "statement.md",
			wantTitle:    "Settlement Statement",
			wantContains: []string{"Settlement Statement", "The sale price is $450,000.", "Commission is 3%."},
			wantMissing:  []string{"#"},
		},
		{
			name:         "h2 title when no h1",
			content:      "## Parties\n\nBuyer: Jane Doe",
			filename:     "parties.md",
			wantTitle:    "Parties",
			wantContains: []string{"Buyer: Jane Doe"},
		},
		{
			name:         "filename title without headings",
			content:      "Just a paragraph about the deed.",
			filename:     "deed_notes.md",
			wantTitle:    "Deed Notes",
			wantContains: []string{"Just a paragraph about the deed."},
		},
		{
			name:         "emphasis and links stripped",
			content:      "See **section 4** and [the addendum](http://example.com/a).",
			filename:     "x.md",
			wantTitle:    "X",
			wantContains: []string{"See section 4 and the addendum."},
			wantMissing:  []string{"**", "http://example.com/a"},
		},
		{
			name:         "lists",
			content:      "- inspection contingency\n- financing contingency",
			filename:     "list.md",
			wantTitle:    "List",
			wantContains: []string{"inspection contingency", "financing contingency"},
			wantMissing:  []string{"- "},
		},
		{
			name:         "tables",
			content:      "| Item | Amount |\n|------|--------|\n| Deposit | $5,000 |",
			filename:     "fees.md",
			wantTitle:    "Fees",
			wantContains: []string{"Item | Amount", "Deposit | $5,000"},
		},
		{
			name:         "code blocks",
			content:      "```\nparcel 42\n```",
			filename:     "code.md",
			wantTitle:    "Code",
			wantContains: []string{"parcel 42"},
			wantMissing:  []string{"```"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(context.Background(), tt.filename, []byte(tt.content))
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Extract() title = %q, want %q", got.Title, tt.wantTitle)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got.Text, want) {
					t.Errorf("Extract() text = %q, should contain %q", got.Text, want)
				}
			}
			for _, missing := range tt.wantMissing {
				if strings.Contains(got.Text, missing) {
					t.Errorf("Extract() text = %q, should not contain %q", got.Text, missing)
				}
			}
		})
	}
}
