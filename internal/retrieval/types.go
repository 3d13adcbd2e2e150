package retrieval

import (
	"errors"
	"fmt"
)

const (
	// DefaultChunkSize is the default chunk window in characters.
	DefaultChunkSize = 1000
	// DefaultOverlap is the default overlap between consecutive chunks in characters.
	DefaultOverlap = 200
	// DefaultTopK is the default number of chunks handed to answer generation.
	DefaultTopK = 5
)

// ErrInvalidConfiguration is returned when chunking or retrieval parameters are unusable.
var ErrInvalidConfiguration = errors.New("invalid retrieval configuration")

// Chunk is a contiguous slice of a document's text.
// Offsets are character (rune) positions into the source text, end exclusive.
type Chunk struct {
	Index       int    `json:"index"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
	Text        string `json:"text"`
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int {
	return c.EndOffset - c.StartOffset
}

// ScoredChunk pairs a chunk with its relevance score for one query.
type ScoredChunk struct {
	Chunk
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

// Options holds the tunables of the retrieval core.
type Options struct {
	ChunkSize int
	Overlap   int
	TopK      int
}

// DefaultOptions returns the default chunking and retrieval options.
func DefaultOptions() Options {
	return Options{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
		TopK:      DefaultTopK,
	}
}

// Validate reports ErrInvalidConfiguration for unusable options.
func (o Options) Validate() error {
	if err := validateChunking(o.ChunkSize, o.Overlap); err != nil {
		return err
	}
	if o.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be greater than 0, got %d", ErrInvalidConfiguration, o.TopK)
	}
	return nil
}

func validateChunking(chunkSize, overlap int) error {
	if chunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be greater than 0, got %d", ErrInvalidConfiguration, chunkSize)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfiguration, overlap)
	}
	if chunkSize <= overlap {
		return fmt.Errorf("%w: chunk_size (%d) must be greater than overlap (%d)", ErrInvalidConfiguration, chunkSize, overlap)
	}
	return nil
}
