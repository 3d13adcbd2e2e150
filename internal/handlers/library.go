package handlers

import (
	"context"
	"net/http"

	"realty-assistant/internal/ingest"
)

const defaultSearchLimit = 10

// Index searches and describes the stored library. *ingest.Pipeline implements it.
type Index interface {
	Search(ctx context.Context, query string, limit int, documentID string) ([]ingest.SearchHit, error)
	Stats(ctx context.Context) (*ingest.Stats, error)
}

// LibraryHandler serves semantic search across documents and library stats.
type LibraryHandler struct {
	index Index
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(index Index) *LibraryHandler {
	return &LibraryHandler{index: index}
}

// SearchResponse lists semantic search hits.
//
// swagger:model SearchResponse
type SearchResponse struct {
	Query string             `json:"query"`
	Hits  []ingest.SearchHit `json:"hits"`
}

// Search returns the stored chunks closest to the query.
//
// swagger:route GET /api/v1/search searchLibrary
//
// ---
// parameters:
//   - in: query
//     name: q
//     type: string
//     required: true
//   - in: query
//     name: limit
//     type: integer
//     required: false
//   - in: query
//     name: document_id
//     type: string
//     required: false
//
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/SearchResponse"
//	'400':
//	  description: Missing query or invalid limit
//	'503':
//	  description: Semantic search is not configured
func (h *LibraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	limit, err := intQuery(r, "limit", defaultSearchLimit)
	if err != nil {
		handleServiceError(ctx, w, err, "search")
		return
	}

	hits, err := h.index.Search(ctx, query, limit, r.URL.Query().Get("document_id"))
	if err != nil {
		handleServiceError(ctx, w, err, "search")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: query, Hits: hits})
}

// Stats returns document and chunk statistics.
//
// swagger:route GET /api/v1/stats libraryStats
//
// responses:
//
//	'200':
//	  description: Library statistics
func (h *LibraryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.index.Stats(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
