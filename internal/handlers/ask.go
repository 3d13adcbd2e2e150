package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"realty-assistant/internal/rag"
)

// AskHandler handles questions about one document.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest represents the HTTP request payload for document questions.
//
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question"`
	// ConversationID continues an earlier conversation about the same document.
	ConversationID string `json:"conversation_id,omitempty"`
	// TopK is the number of excerpts handed to the model, clamped to 1-20.
	TopK int `json:"top_k,omitempty"`
	// SkipHistory answers without earlier turns of the conversation.
	SkipHistory bool `json:"skip_history,omitempty"`
}

// ServeHTTP handles HTTP requests for document questions.
//
// swagger:route POST /api/v1/documents/{id}/ask askQuestion
//
// # Ask a question about a document
//
// Scores the document's chunks against the question, hands the best excerpts
// and recent conversation turns to the model and returns its answer with
// references to the excerpts.
//
// Use the `debug=true` query parameter to include the query terms and every
// retrieved chunk with its offsets, score and rank.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// parameters:
//   - in: body
//     name: body
//     required: true
//     schema:
//     "$ref": "#/definitions/AskRequest"
//   - in: query
//     name: debug
//     type: boolean
//     required: false
//
// responses:
//
//	'200':
//	  description: Answer with references
//	'400':
//	  description: Empty question or conversation of another document
//	'404':
//	  description: Unknown document
//	'502':
//	  description: Model unavailable or returned unusable output
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AskRequest
	if !decodeJSON(ctx, w, r, &req) {
		return
	}

	resp, err := h.engine.Ask(ctx, rag.AskRequest{
		DocumentID:     chi.URLParam(r, "id"),
		Question:       req.Question,
		ConversationID: req.ConversationID,
		TopK:           req.TopK,
		SkipHistory:    req.SkipHistory,
		Debug:          boolQuery(r, "debug"),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "ask")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
