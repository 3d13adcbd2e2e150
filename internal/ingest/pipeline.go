package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/document"
	"realty-assistant/internal/llm"
	"realty-assistant/internal/metrics"
	"realty-assistant/internal/retrieval"
	"realty-assistant/internal/storage"
	"realty-assistant/internal/vectorstore"
)

// embedBatchSize bounds the number of chunk texts sent per embeddings call.
const embedBatchSize = 32

// ErrSearchDisabled is returned by Search when no embedder or vector store is configured.
var ErrSearchDisabled = errors.New("semantic search is not configured")

// Extractor validates and extracts uploaded documents. *document.Registry implements it.
type Extractor interface {
	Supported(name string) bool
	Validate(name string, size int64) error
	Extract(ctx context.Context, name string, content []byte) (*document.Extracted, error)
}

// Result describes the outcome of loading one document.
type Result struct {
	Document  *storage.DocumentRecord
	Chunks    int
	Duplicate bool // an identical document was already stored and is returned unchanged
	Indexed   bool // chunks were mirrored to the vector store
}

// Pipeline turns uploaded files into stored, chunked documents and keeps
// the optional vector store in step with the relational store.
type Pipeline struct {
	extractor   Extractor
	documents   storage.DocumentStore
	chunks      storage.ChunkStore
	chunking    retrieval.Options
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	metrics     *metrics.Metrics
}

// NewPipeline creates a new ingestion pipeline. Chunking options are
// validated once here so every document is chunked the same way.
func NewPipeline(
	extractor Extractor,
	documents storage.DocumentStore,
	chunks storage.ChunkStore,
	chunking retrieval.Options,
) (*Pipeline, error) {
	if err := chunking.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunking options: %w", err)
	}
	return &Pipeline{
		extractor: extractor,
		documents: documents,
		chunks:    chunks,
		chunking:  chunking,
	}, nil
}

// WithSemanticIndex mirrors chunks into the given vector store collection.
func (p *Pipeline) WithSemanticIndex(embedder llm.Embedder, store vectorstore.VectorStore, collection string) *Pipeline {
	p.embedder = embedder
	p.vectorStore = store
	p.collection = collection
	return p
}

// WithMetrics records ingestion outcomes on m.
func (p *Pipeline) WithMetrics(m *metrics.Metrics) *Pipeline {
	p.metrics = m
	return p
}

// SemanticIndexEnabled reports whether chunks are mirrored to a vector store.
func (p *Pipeline) SemanticIndexEnabled() bool {
	return p.embedder != nil && p.vectorStore != nil
}

// Load validates, extracts, chunks and stores one document.
// A document whose normalized text matches a stored document is not stored
// again; the existing record is returned with Duplicate set.
func (p *Pipeline) Load(ctx context.Context, name string, content []byte) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx)
	name = filepath.Base(name)

	result, format, err := p.load(ctx, name, content)
	switch {
	case err != nil:
		p.metrics.IncDocumentsIngested(format, metrics.OutcomeFailed)
		logger.WarnContext(ctx, "document load failed", "name", name, "error", err)
	case result.Duplicate:
		p.metrics.IncDocumentsIngested(format, metrics.OutcomeDuplicate)
		logger.InfoContext(ctx, "duplicate document", "name", name, "document_id", result.Document.ID)
	default:
		p.metrics.IncDocumentsIngested(format, metrics.OutcomeStored)
		logger.InfoContext(ctx, "document loaded",
			"name", name,
			"document_id", result.Document.ID,
			"chunks", result.Chunks,
			"indexed", result.Indexed,
		)
	}
	return result, err
}

func (p *Pipeline) load(ctx context.Context, name string, content []byte) (*Result, string, error) {
	if err := p.extractor.Validate(name, int64(len(content))); err != nil {
		return nil, "", err
	}

	extracted, err := p.extractor.Extract(ctx, name, content)
	if err != nil {
		return nil, "", err
	}
	format := string(extracted.Format)

	text := document.NormalizeWhitespace(extracted.Text)
	if text == "" {
		return nil, format, document.ErrNoText
	}

	sum := sha256.Sum256([]byte(text))
	hash := hex.EncodeToString(sum[:])

	existing, err := p.documents.GetByHash(ctx, hash)
	if err == nil {
		return p.duplicate(ctx, existing), format, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, format, fmt.Errorf("failed to check for duplicate document: %w", err)
	}

	chunks, err := retrieval.ChunkText(text, p.chunking.ChunkSize, p.chunking.Overlap)
	if err != nil {
		return nil, format, fmt.Errorf("failed to chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, format, document.ErrNoText
	}

	doc := &storage.DocumentRecord{
		ID:        uuid.New().String(),
		Name:      name,
		Format:    format,
		Title:     extracted.Title,
		Pages:     extracted.Pages,
		SizeBytes: extracted.Size,
		Hash:      hash,
		Text:      text,
	}
	if err := p.documents.Insert(ctx, doc); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Lost a race with a concurrent upload of the same content.
			existing, getErr := p.documents.GetByHash(ctx, hash)
			if getErr == nil {
				return p.duplicate(ctx, existing), format, nil
			}
		}
		return nil, format, fmt.Errorf("failed to store document: %w", err)
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = &storage.ChunkRecord{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			ChunkIndex:  c.Index,
			StartOffset: c.StartOffset,
			EndOffset:   c.EndOffset,
			Text:        c.Text,
		}
	}
	if err := p.chunks.InsertBatch(ctx, records); err != nil {
		if delErr := p.documents.Delete(ctx, doc.ID); delErr != nil {
			contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to roll back document", "document_id", doc.ID, "error", delErr)
		}
		return nil, format, fmt.Errorf("failed to store chunks: %w", err)
	}

	result := &Result{Document: doc, Chunks: len(records)}
	if p.SemanticIndexEnabled() {
		if err := p.mirror(ctx, doc, records); err != nil {
			contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to mirror chunks to vector store",
				"document_id", doc.ID, "error", err)
		} else {
			result.Indexed = true
		}
	}
	return result, format, nil
}

func (p *Pipeline) duplicate(ctx context.Context, existing *storage.DocumentRecord) *Result {
	n, err := p.chunks.CountByDocument(ctx, existing.ID)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to count chunks of duplicate", "document_id", existing.ID, "error", err)
	}
	return &Result{Document: existing, Chunks: n, Duplicate: true}
}

// mirror embeds chunk texts in batches and upserts them as points whose IDs
// equal the chunk IDs.
func (p *Pipeline) mirror(ctx context.Context, doc *storage.DocumentRecord, records []*storage.ChunkRecord) error {
	for start := 0; start < len(records); start += embedBatchSize {
		end := min(start+embedBatchSize, len(records))
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.Text
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings: %w", err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
		}

		points := make([]vectorstore.Point, len(batch))
		for i, r := range batch {
			points[i] = vectorstore.Point{
				ID:  r.ID,
				Vec: vectors[i],
				Meta: map[string]any{
					vectorstore.FieldDocumentID:   doc.ID,
					vectorstore.FieldDocumentName: doc.Name,
					vectorstore.FieldChunkIndex:   r.ChunkIndex,
				},
			}
		}

		if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a document with its chunks and conversation turns, and
// its points from the vector store when one is configured.
// Returns storage.ErrNotFound if the document does not exist.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	logger := contextutil.LoggerFromContext(ctx)

	var pointIDs []string
	if p.SemanticIndexEnabled() {
		ids, err := p.chunks.ListIDsByDocument(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list chunk IDs: %w", err)
		}
		pointIDs = ids
	}

	if err := p.documents.Delete(ctx, id); err != nil {
		return err
	}

	if len(pointIDs) > 0 {
		if err := p.vectorStore.Delete(ctx, p.collection, pointIDs); err != nil {
			logger.WarnContext(ctx, "failed to delete chunks from vector store", "document_id", id, "count", len(pointIDs), "error", err)
		}
	}

	logger.InfoContext(ctx, "document deleted", "document_id", id)
	return nil
}
