package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"realty-assistant/internal/contextutil"
)

const (
	// ChunkerVersion identifies the chunking algorithm. Bump it when chunk
	// boundaries change so stored indexes can be told apart.
	ChunkerVersion = "v2.0"
	// TokensPerRune is an approximation for token counting (4 chars per token).
	TokensPerRune = 4.0
)

// Stats describes the stored library.
type Stats struct {
	Documents      int          `json:"documents"`
	Chunks         int          `json:"chunks"`
	ChunkChars     LengthStats  `json:"chunk_chars"`
	ChunkTokens    LengthStats  `json:"chunk_tokens"`
	ChunkSize      int          `json:"chunk_size"`
	ChunkOverlap   int          `json:"chunk_overlap"`
	ChunkerVersion string       `json:"chunker_version"`
	IndexVersion   string       `json:"index_version"`
	SemanticIndex  *VectorStats `json:"semantic_index,omitempty"`
}

// LengthStats contains min, max, mean and p95 of a set of lengths.
type LengthStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

// VectorStats describes the vector store collection.
type VectorStats struct {
	Collection string `json:"collection"`
	Points     int    `json:"points"`
	VectorSize int    `json:"vector_size"`
	Status     string `json:"status"`
}

// Stats computes library statistics from the stores.
// Vector store failures are logged and leave SemanticIndex unset.
func (p *Pipeline) Stats(ctx context.Context) (*Stats, error) {
	docs, err := p.documents.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	lengths, err := p.chunks.ListAllLengths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk lengths: %w", err)
	}

	tokens := make([]int, len(lengths))
	for i, n := range lengths {
		tokens[i] = max(1, int(math.Round(float64(n)/TokensPerRune)))
	}

	stats := &Stats{
		Documents:      docs,
		Chunks:         len(lengths),
		ChunkChars:     computeLengthStats(lengths),
		ChunkTokens:    computeLengthStats(tokens),
		ChunkSize:      p.chunking.ChunkSize,
		ChunkOverlap:   p.chunking.Overlap,
		ChunkerVersion: ChunkerVersion,
		IndexVersion:   p.indexVersion(),
	}

	if p.SemanticIndexEnabled() {
		info, err := p.vectorStore.GetCollectionInfo(ctx, p.collection)
		if err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to read collection info", "collection", p.collection, "error", err)
		} else {
			stats.SemanticIndex = &VectorStats{
				Collection: p.collection,
				Points:     info.PointsCount,
				VectorSize: info.VectorSize,
				Status:     info.Status,
			}
		}
	}

	return stats, nil
}

// indexVersion hashes the chunker version and chunking parameters.
func (p *Pipeline) indexVersion() string {
	input := fmt.Sprintf("%s|chunkSize=%d|overlap=%d", ChunkerVersion, p.chunking.ChunkSize, p.chunking.Overlap)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// computeLengthStats computes min, max, mean, and p95.
func computeLengthStats(values []int) LengthStats {
	if len(values) == 0 {
		return LengthStats{}
	}

	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	sum := 0
	for _, v := range sorted {
		sum += v
	}
	mean := float64(sum) / float64(len(sorted))

	// Nearest-rank percentile.
	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	p95Index = max(0, min(p95Index, len(sorted)-1))

	return LengthStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}
