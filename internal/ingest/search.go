package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/service"
	"realty-assistant/internal/storage"
	"realty-assistant/internal/vectorstore"
)

// SearchHit is one chunk found by semantic library search.
type SearchHit struct {
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkIndex   int     `json:"chunk_index"`
	Score        float32 `json:"score"`
	Text         string  `json:"text"`
}

// Search embeds query and returns the closest stored chunks across all
// documents, or within documentID when it is non-empty.
// Points whose chunk no longer exists are skipped.
func (p *Pipeline) Search(ctx context.Context, query string, limit int, documentID string) ([]SearchHit, error) {
	if !p.SemanticIndexEnabled() {
		return nil, ErrSearchDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &service.ValidationError{Field: "q", Message: "cannot be empty"}
	}
	if limit <= 0 {
		return nil, &service.ValidationError{Field: "limit", Message: "must be greater than 0"}
	}

	vectors, err := p.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, service.External(err, "failed to embed query")
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 query embedding, got %d", len(vectors))
	}

	var filters map[string]any
	if documentID != "" {
		filters = map[string]any{vectorstore.FieldDocumentID: documentID}
	}

	results, err := p.vectorStore.Search(ctx, p.collection, vectors[0], limit, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w: %w", service.ErrUnavailable, err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		chunk, err := p.chunks.GetByID(ctx, r.PointID)
		if errors.Is(err, storage.ErrNotFound) {
			contextutil.LoggerFromContext(ctx).DebugContext(ctx, "skipping stale vector point", "point_id", r.PointID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load chunk %s: %w", r.PointID, err)
		}

		hits = append(hits, SearchHit{
			DocumentID:   chunk.DocumentID,
			DocumentName: r.DocumentName(),
			ChunkIndex:   chunk.ChunkIndex,
			Score:        r.Score,
			Text:         chunk.Text,
		})
	}
	return hits, nil
}
