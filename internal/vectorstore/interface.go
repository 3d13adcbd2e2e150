package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks realty-assistant/internal/vectorstore VectorStore

import "context"

// Payload keys stored on every chunk point.
const (
	FieldDocumentID   = "document_id"
	FieldDocumentName = "document_name"
	FieldChunkIndex   = "chunk_index"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// DocumentID returns the document_id payload value or "" if absent.
func (r SearchResult) DocumentID() string {
	s, _ := r.Meta[FieldDocumentID].(string)
	return s
}

// DocumentName returns the document_name payload value or "" if absent.
func (r SearchResult) DocumentName() string {
	s, _ := r.Meta[FieldDocumentName].(string)
	return s
}

// ChunkIndex returns the chunk_index payload value or -1 if absent.
func (r SearchResult) ChunkIndex() int {
	switch v := r.Meta[FieldChunkIndex].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return -1
	}
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search with optional filters.
	// The only supported filter key is document_id.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)

	// EnsureCollection creates the collection or validates its vector size.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// GetCollectionInfo returns the vector size, point count and status of a collection.
	GetCollectionInfo(ctx context.Context, collection string) (*CollectionInfo, error)

	// Health reports whether the store is reachable.
	Health(ctx context.Context) error
}
