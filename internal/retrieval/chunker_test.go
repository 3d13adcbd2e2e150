package retrieval

import (
	"errors"
	"strings"
	"testing"
)

// syntheticProse builds deterministic prose with sentences of varying length.
func syntheticProse(sentences int) string {
	words := []string{"buyer", "seller", "closing", "escrow", "deposit", "title", "agent", "inspection", "lender", "appraisal", "deed", "parcel"}
	endings := []string{".", "?", "!"}

	var b strings.Builder
	w := 0
	for s := 0; s < sentences; s++ {
		if s > 0 {
			b.WriteString(" ")
		}
		n := 3 + s%10
		for i := 0; i < n; i++ {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(words[w%len(words)])
			w++
		}
		b.WriteString(endings[s%len(endings)])
	}
	return b.String()
}

func TestChunkText_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{name: "zero chunk size", chunkSize: 0, overlap: 0},
		{name: "negative chunk size", chunkSize: -10, overlap: 0},
		{name: "overlap equals chunk size", chunkSize: 100, overlap: 100},
		{name: "overlap larger than chunk size", chunkSize: 100, overlap: 150},
		{name: "negative overlap", chunkSize: 100, overlap: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := ChunkText("Some text.", tt.chunkSize, tt.overlap)
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("ChunkText() error = %v, want ErrInvalidConfiguration", err)
			}
			if chunks != nil {
				t.Errorf("ChunkText() chunks = %v, want nil", chunks)
			}
		})
	}
}

func TestChunkText_EmptyDocument(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t  \r\n"} {
		chunks, err := ChunkText(text, 1000, 200)
		if err != nil {
			t.Fatalf("ChunkText(%q) unexpected error: %v", text, err)
		}
		if len(chunks) != 0 {
			t.Errorf("ChunkText(%q) returned %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestChunkText_ShortText(t *testing.T) {
	text := "Sale price is $450,000."
	chunks, err := ChunkText(text, 1000, 200)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("ChunkText() returned %d chunks, want 1", len(chunks))
	}
	want := Chunk{Index: 0, StartOffset: 0, EndOffset: len([]rune(text)), Text: text}
	if chunks[0] != want {
		t.Errorf("ChunkText() chunk = %+v, want %+v", chunks[0], want)
	}
}

func TestChunkText_ThreeChunkScenario(t *testing.T) {
	text := strings.Repeat("lorem ipsum ", 200)
	if len(text) != 2400 {
		t.Fatalf("test text length = %d, want 2400", len(text))
	}

	chunks, err := ChunkText(text, 1000, 200)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("ChunkText() returned %d chunks, want 3", len(chunks))
	}

	c1, c2 := chunks[1], chunks[2]
	if c2.StartOffset > c1.EndOffset {
		t.Errorf("chunk 2 start %d is after chunk 1 end %d", c2.StartOffset, c1.EndOffset)
	}
	if c2.StartOffset < c1.EndOffset-200 {
		t.Errorf("chunk 2 start %d is before chunk 1 end - overlap (%d)", c2.StartOffset, c1.EndOffset-200)
	}
	if chunks[2].EndOffset != 2400 {
		t.Errorf("last chunk end = %d, want 2400", chunks[2].EndOffset)
	}
}

func TestChunkText_PrefersSentenceBoundary(t *testing.T) {
	text := strings.Repeat("a", 85) + ". " + strings.Repeat("b", 100)

	chunks, err := ChunkText(text, 100, 10)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("ChunkText() returned %d chunks, want at least 2", len(chunks))
	}
	if chunks[0].EndOffset != 86 {
		t.Errorf("first chunk end = %d, want 86 (just after the period)", chunks[0].EndOffset)
	}
	if !strings.HasSuffix(chunks[0].Text, ".") {
		t.Errorf("first chunk should end at the sentence boundary, got %q", chunks[0].Text)
	}
	if chunks[1].StartOffset != 76 {
		t.Errorf("second chunk start = %d, want 76", chunks[1].StartOffset)
	}
}

func TestChunkText_IgnoresDecimalPoint(t *testing.T) {
	text := strings.Repeat("x", 90) + "3.5" + strings.Repeat("y", 50)

	chunks, err := ChunkText(text, 100, 0)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if chunks[0].EndOffset != 100 {
		t.Errorf("first chunk end = %d, want 100 (a period inside a number is not a boundary)", chunks[0].EndOffset)
	}
}

func TestChunkText_AttachesWhitespaceRemainder(t *testing.T) {
	text := strings.Repeat("a", 95) + "." + strings.Repeat(" ", 10)

	chunks, err := ChunkText(text, 100, 10)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("ChunkText() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0].EndOffset != len(text) {
		t.Errorf("chunk end = %d, want %d", chunks[0].EndOffset, len(text))
	}
}

func TestChunkText_MultibyteOffsets(t *testing.T) {
	text := strings.Repeat("é", 150)

	chunks, err := ChunkText(text, 100, 20)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("ChunkText() returned %d chunks, want 2", len(chunks))
	}
	if chunks[1].StartOffset != 80 || chunks[1].EndOffset != 150 {
		t.Errorf("second chunk offsets = [%d,%d), want [80,150)", chunks[1].StartOffset, chunks[1].EndOffset)
	}
	if got := len([]rune(chunks[0].Text)); got != 100 {
		t.Errorf("first chunk has %d characters, want 100", got)
	}
}

func TestChunkText_Properties(t *testing.T) {
	texts := []struct {
		name string
		text string
	}{
		{name: "prose", text: syntheticProse(120)},
		{name: "internal whitespace run", text: "Sale price agreed." + strings.Repeat(" ", 3000) + "Closing date set."},
		{name: "blank lines between paragraphs", text: syntheticProse(10) + strings.Repeat("\n", 700) + syntheticProse(10)},
	}

	configs := []struct {
		chunkSize int
		overlap   int
	}{
		{chunkSize: 1000, overlap: 200},
		{chunkSize: 300, overlap: 50},
		{chunkSize: 120, overlap: 0},
		{chunkSize: 50, overlap: 45},
		{chunkSize: 10, overlap: 9},
	}

	for _, tt := range texts {
		t.Run(tt.name, func(t *testing.T) {
			checkChunkProperties(t, tt.text, configs)
		})
	}
}

func checkChunkProperties(t *testing.T, text string, configs []struct {
	chunkSize int
	overlap   int
}) {
	t.Helper()
	runes := []rune(text)

	for _, cfg := range configs {
		chunks, err := ChunkText(text, cfg.chunkSize, cfg.overlap)
		if err != nil {
			t.Fatalf("ChunkText(%d, %d) error = %v", cfg.chunkSize, cfg.overlap, err)
		}
		if len(chunks) == 0 {
			t.Fatalf("ChunkText(%d, %d) returned no chunks", cfg.chunkSize, cfg.overlap)
		}
		if chunks[0].StartOffset != 0 {
			t.Errorf("ChunkText(%d, %d) first chunk starts at %d, want 0", cfg.chunkSize, cfg.overlap, chunks[0].StartOffset)
		}
		if last := chunks[len(chunks)-1]; last.EndOffset != len(runes) {
			t.Errorf("ChunkText(%d, %d) last chunk ends at %d, want %d", cfg.chunkSize, cfg.overlap, last.EndOffset, len(runes))
		}

		for i, c := range chunks {
			if c.Index != i {
				t.Errorf("chunk %d has index %d", i, c.Index)
			}
			if c.StartOffset < 0 || c.StartOffset >= c.EndOffset || c.EndOffset > len(runes) {
				t.Fatalf("chunk %d has invalid offsets [%d,%d)", i, c.StartOffset, c.EndOffset)
			}
			if c.Text != string(runes[c.StartOffset:c.EndOffset]) {
				t.Errorf("chunk %d text does not match its offsets", i)
			}
			if c.Len() > cfg.chunkSize {
				t.Errorf("chunk %d length %d exceeds chunk size %d", i, c.Len(), cfg.chunkSize)
			}
			if c.Text == "" {
				t.Errorf("chunk %d is empty", i)
			}

			if i == 0 {
				continue
			}
			prev := chunks[i-1]
			if c.StartOffset <= prev.StartOffset {
				t.Errorf("chunk %d start %d does not advance past %d", i, c.StartOffset, prev.StartOffset)
			}
			shared := prev.EndOffset - c.StartOffset
			if shared < 0 || shared > cfg.overlap {
				t.Errorf("ChunkText(%d, %d) chunks %d/%d share %d characters, want within [0,%d]",
					cfg.chunkSize, cfg.overlap, i-1, i, shared, cfg.overlap)
			}
		}
	}
}

func TestChunkText_WhitespaceRunStaysContiguous(t *testing.T) {
	text := "Sale price agreed." + strings.Repeat(" ", 3000) + "Closing date set."

	chunks, err := ChunkText(text, 1000, 200)
	if err != nil {
		t.Fatalf("ChunkText() error = %v", err)
	}
	if len(chunks) < 4 {
		t.Fatalf("got %d chunks, want at least 4", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		if shared := chunks[i-1].EndOffset - chunks[i].StartOffset; shared != 200 && i != len(chunks)-1 {
			t.Errorf("chunks %d/%d share %d characters, want 200", i-1, i, shared)
		}
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last.Text, "Closing date set.") {
		t.Errorf("last chunk = %q, want the closing sentence", last.Text)
	}
}
