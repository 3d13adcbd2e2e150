package ingest

import (
	"context"
	"errors"
	"testing"

	llm_mocks "realty-assistant/internal/llm/mocks"
	"realty-assistant/internal/service"
	"realty-assistant/internal/storage"
	"realty-assistant/internal/vectorstore"
	vectorstore_mocks "realty-assistant/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

func TestPipeline_Search_Disabled(t *testing.T) {
	p := newTestPipeline(t, newTestStores(t))

	_, err := p.Search(context.Background(), "closing date", 5, "")
	if !errors.Is(err, ErrSearchDisabled) {
		t.Errorf("Search() error = %v, want ErrSearchDisabled", err)
	}
}

func TestPipeline_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	stores := newTestStores(t)
	ctx := context.Background()

	doc := &storage.DocumentRecord{Name: "settlement.txt", Format: "text", Hash: "h", Text: "closing on July 15"}
	if err := stores.documents.Insert(ctx, doc); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	chunk := &storage.ChunkRecord{ID: "chunk-1", DocumentID: doc.ID, ChunkIndex: 0, StartOffset: 0, EndOffset: 18, Text: "closing on July 15"}
	if err := stores.chunks.InsertBatch(ctx, []*storage.ChunkRecord{chunk}); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}

	embedder := llm_mocks.NewMockEmbedder(ctrl)
	vectors := vectorstore_mocks.NewMockVectorStore(ctrl)
	p := newTestPipeline(t, stores).WithSemanticIndex(embedder, vectors, "test-collection")

	embedder.EXPECT().EmbedTexts(gomock.Any(), []string{"closing date"}).Return([][]float32{{0.1, 0.2}}, nil)
	vectors.EXPECT().
		Search(gomock.Any(), "test-collection", []float32{0.1, 0.2}, 3, map[string]any{vectorstore.FieldDocumentID: doc.ID}).
		Return([]vectorstore.SearchResult{
			{PointID: "chunk-1", Score: 0.9, Meta: map[string]any{vectorstore.FieldDocumentName: "settlement.txt"}},
			{PointID: "stale-chunk", Score: 0.5},
		}, nil)

	hits, err := p.Search(ctx, "  closing date ", 3, doc.ID)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Search() = %d hits, want 1 (stale point skipped)", len(hits))
	}
	hit := hits[0]
	if hit.DocumentID != doc.ID || hit.DocumentName != "settlement.txt" || hit.Text != chunk.Text || hit.Score != 0.9 {
		t.Errorf("Search() hit = %+v", hit)
	}
}

func TestPipeline_Search_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := newTestPipeline(t, newTestStores(t)).
		WithSemanticIndex(llm_mocks.NewMockEmbedder(ctrl), vectorstore_mocks.NewMockVectorStore(ctrl), "test-collection")

	tests := []struct {
		name  string
		query string
		limit int
	}{
		{name: "blank query", query: "   ", limit: 5},
		{name: "zero limit", query: "price", limit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Search(context.Background(), tt.query, tt.limit, ""); !errors.Is(err, service.ErrInvalidInput) {
				t.Errorf("Search() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
