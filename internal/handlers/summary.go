package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"realty-assistant/internal/rag"
)

// SummaryHandler serves document summaries and suggested questions.
type SummaryHandler struct {
	engine rag.Engine
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(engine rag.Engine) *SummaryHandler {
	return &SummaryHandler{engine: engine}
}

// SuggestionsResponse lists starter questions for a document.
//
// swagger:model SuggestionsResponse
type SuggestionsResponse struct {
	DocumentID string   `json:"document_id"`
	Questions  []string `json:"questions"`
}

// Summary returns a model-written summary of the document.
//
// swagger:route GET /api/v1/documents/{id}/summary summarizeDocument
//
// responses:
//
//	'200':
//	  description: Summary
//	'404':
//	  description: Unknown document
//	'502':
//	  description: Model unavailable
func (h *SummaryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.engine.Summarize(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "summarize")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Suggestions returns starter questions for the document.
//
// swagger:route GET /api/v1/documents/{id}/suggestions suggestQuestions
//
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/SuggestionsResponse"
//	'404':
//	  description: Unknown document
func (h *SummaryHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	questions, err := h.engine.SuggestedQuestions(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err, "suggest questions")
		return
	}
	writeJSON(w, http.StatusOK, SuggestionsResponse{DocumentID: id, Questions: questions})
}
