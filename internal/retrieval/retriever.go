package retrieval

import (
	"fmt"
	"sort"
)

// Retrieve returns the topK chunks most relevant to query, best first.
// Ties go to the earlier chunk. Chunks scoring zero are left out, so the
// result may be shorter than topK. A query without significant terms falls
// back to the first topK chunks in document order. chunks is not modified.
func Retrieve(chunks []Chunk, query string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be greater than 0, got %d", ErrInvalidConfiguration, topK)
	}
	if len(chunks) == 0 {
		return []ScoredChunk{}, nil
	}

	terms := ExtractTerms(query)
	if len(terms) == 0 {
		n := topK
		if n > len(chunks) {
			n = len(chunks)
		}
		result := make([]ScoredChunk, n)
		for i := 0; i < n; i++ {
			result[i] = ScoredChunk{Chunk: chunks[i]}
		}
		return result, nil
	}

	phrases := QueryPhrases(query, terms)
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		score, matched := scoreChunk(chunk, terms, query, phrases)
		if score <= 0 {
			continue
		}
		scored = append(scored, ScoredChunk{
			Chunk:        chunk,
			Score:        score,
			MatchedTerms: matched,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// Chunks returns the plain chunks of a scored result, preserving order.
func Chunks(scored []ScoredChunk) []Chunk {
	out := make([]Chunk, len(scored))
	for i, sc := range scored {
		out[i] = sc.Chunk
	}
	return out
}
