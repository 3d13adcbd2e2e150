package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"realty-assistant/internal/rag"
)

// ConversationHandler serves conversation history.
type ConversationHandler struct {
	engine rag.Engine
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(engine rag.Engine) *ConversationHandler {
	return &ConversationHandler{engine: engine}
}

// ClearResponse reports how many turns a clear removed.
//
// swagger:model ClearResponse
type ClearResponse struct {
	ConversationID string `json:"conversation_id"`
	Removed        int    `json:"removed"`
}

// Get returns the stored turns of a conversation.
//
// swagger:route GET /api/v1/conversations/{id} getConversation
//
// responses:
//
//	'200':
//	  description: Conversation history
//	'404':
//	  description: Unknown conversation
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	conv, err := h.engine.Conversation(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "get conversation")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// Clear deletes a conversation. Clearing an unknown conversation removes nothing.
//
// swagger:route DELETE /api/v1/conversations/{id} clearConversation
//
// responses:
//
//	'200':
//	  schema:
//	    "$ref": "#/definitions/ClearResponse"
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	n, err := h.engine.ClearConversation(ctx, id)
	if err != nil {
		handleServiceError(ctx, w, err, "clear conversation")
		return
	}
	writeJSON(w, http.StatusOK, ClearResponse{ConversationID: id, Removed: n})
}
