package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/ingest"
	"realty-assistant/internal/storage"
)

// multipartOverhead is allowed on top of the file size limit for form boundaries and headers.
const multipartOverhead = 1 << 20

// Library loads and removes documents. *ingest.Pipeline implements it.
type Library interface {
	Load(ctx context.Context, name string, content []byte) (*ingest.Result, error)
	Delete(ctx context.Context, id string) error
}

// DocumentHandler serves the document endpoints.
type DocumentHandler struct {
	library   Library
	documents storage.DocumentStore
	chunks    storage.ChunkStore
	maxBytes  int64
}

// NewDocumentHandler creates a new DocumentHandler accepting uploads up to maxBytes.
func NewDocumentHandler(library Library, documents storage.DocumentStore, chunks storage.ChunkStore, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{
		library:   library,
		documents: documents,
		chunks:    chunks,
		maxBytes:  maxBytes,
	}
}

// DocumentResponse describes a stored document.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Format    string    `json:"format"`
	Title     string    `json:"title"`
	Pages     int       `json:"pages"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`

	// Chunks is the number of stored chunks. Omitted in listings.
	Chunks int `json:"chunks,omitempty"`
	// Duplicate is set on upload when identical content was already stored.
	Duplicate bool `json:"duplicate,omitempty"`
	// Indexed is set on upload when chunks were mirrored to the vector store.
	Indexed bool `json:"indexed,omitempty"`
}

// DocumentListResponse lists stored documents.
//
// swagger:model DocumentListResponse
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

func toDocumentResponse(doc *storage.DocumentRecord) DocumentResponse {
	return DocumentResponse{
		ID:        doc.ID,
		Name:      doc.Name,
		Format:    doc.Format,
		Title:     doc.Title,
		Pages:     doc.Pages,
		SizeBytes: doc.SizeBytes,
		CreatedAt: doc.CreatedAt,
	}
}

// Upload handles a multipart document upload.
//
// swagger:route POST /api/v1/documents uploadDocument
//
// # Upload a document
//
// Extracts, chunks and stores a PDF, markdown or text file sent as the
// multipart field `file`. Uploading content that is already stored returns
// the existing document with `duplicate` set.
//
// ---
// consumes:
// - multipart/form-data
// produces:
// - application/json
// responses:
//
//	'201':
//	  description: Document stored
//	  schema:
//	    "$ref": "#/definitions/DocumentResponse"
//	'200':
//	  description: Duplicate of a stored document
//	  schema:
//	    "$ref": "#/definitions/DocumentResponse"
//	'400':
//	  description: Missing file field
//	'413':
//	  description: File too large
//	'415':
//	  description: Unsupported format
//	'422':
//	  description: No extractable text or too many pages
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			handleServiceError(ctx, w, err, "upload")
			return
		}
		logger.WarnContext(ctx, "missing upload file", "error", err)
		writeError(w, http.StatusBadRequest, "Multipart field 'file' is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		handleServiceError(ctx, w, err, "upload")
		return
	}

	result, err := h.library.Load(ctx, header.Filename, content)
	if err != nil {
		handleServiceError(ctx, w, err, "upload")
		return
	}

	resp := toDocumentResponse(result.Document)
	resp.Chunks = result.Chunks
	resp.Duplicate = result.Duplicate
	resp.Indexed = result.Indexed

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// List returns all stored documents, newest first.
//
// swagger:route GET /api/v1/documents listDocuments
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/DocumentListResponse"
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.documents.List(ctx)
	if err != nil {
		handleServiceError(ctx, w, err, "list documents")
		return
	}

	resp := DocumentListResponse{Documents: make([]DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		resp.Documents = append(resp.Documents, toDocumentResponse(doc))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns one document with its chunk count.
//
// swagger:route GET /api/v1/documents/{id} getDocument
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/DocumentResponse"
//	'404':
//	  description: Unknown document
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	doc, err := h.documents.GetByID(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err, "get document")
		return
	}
	n, err := h.chunks.CountByDocument(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err, "get document")
		return
	}

	resp := toDocumentResponse(doc)
	resp.Chunks = n
	writeJSON(w, http.StatusOK, resp)
}

// Delete removes a document, its chunks and its conversations.
//
// swagger:route DELETE /api/v1/documents/{id} deleteDocument
//
// responses:
//
//	'204':
//	  description: Deleted
//	'404':
//	  description: Unknown document
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.library.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleServiceError(ctx, w, err, "delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
