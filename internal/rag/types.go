package rag

import (
	"time"

	"realty-assistant/internal/answer"
)

// AskRequest represents a question about one loaded document.
type AskRequest struct {
	// DocumentID is the document to answer from.
	DocumentID string `json:"document_id"`
	// Question is the user's question to answer.
	Question string `json:"question"`
	// ConversationID continues an existing conversation. A new one is started when empty.
	ConversationID string `json:"conversation_id,omitempty"`
	// TopK optionally sets how many chunks are handed to answer generation (1-20).
	TopK int `json:"top_k,omitempty"`
	// SkipHistory answers without taking earlier turns into account.
	SkipHistory bool `json:"skip_history,omitempty"`
	// Debug enables debug mode, returning detailed retrieval information.
	Debug bool `json:"debug,omitempty"`
}

// Reference points at a chunk that was handed to answer generation.
type Reference struct {
	// ChunkIndex is the chunk index within the document.
	ChunkIndex int `json:"chunk_index"`
	// Score is the keyword relevance score of the chunk.
	Score float64 `json:"score"`
	// MatchedTerms are the query terms found in the chunk.
	MatchedTerms []string `json:"matched_terms"`
	// Preview is the start of the chunk text.
	Preview string `json:"preview"`
	// Cited is true when the model named this chunk as a source.
	Cited bool `json:"cited"`
}

// AskResponse represents the answer to an AskRequest.
type AskResponse struct {
	Answer         string      `json:"answer"`
	Confidence     float64     `json:"confidence"`
	Reasoning      string      `json:"reasoning"`
	ConversationID string      `json:"conversation_id"`
	References     []Reference `json:"references"`
	// Debug contains debug information when debug mode is enabled.
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo contains detailed retrieval information for debugging and evaluation.
type DebugInfo struct {
	// Terms are the significant query terms used for scoring.
	Terms []string `json:"terms"`
	// TopK is the effective chunk limit after clamping.
	TopK int `json:"top_k"`
	// TotalChunks is the number of chunks in the document.
	TotalChunks int `json:"total_chunks"`
	// HistoryTurns is the number of earlier turns available to generation.
	HistoryTurns int `json:"history_turns"`
	// RetrievedChunks contains all retrieved chunks with scores and ranks.
	RetrievedChunks []RetrievedChunk `json:"retrieved_chunks"`
}

// RetrievedChunk represents a retrieved chunk with scoring information.
type RetrievedChunk struct {
	ChunkIndex   int      `json:"chunk_index"`
	StartOffset  int      `json:"start_offset"`
	EndOffset    int      `json:"end_offset"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms"`
	// Rank is the rank of this chunk in the retrieval results (1-based).
	Rank int    `json:"rank"`
	Text string `json:"text"`
}

// Summary is a model-written summary of a document.
type Summary struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
}

// Conversation is the stored history of one conversation.
type Conversation struct {
	ConversationID  string        `json:"conversation_id"`
	DocumentID      string        `json:"document_id"`
	TotalQuestions  int           `json:"total_questions"`
	RecentQuestions []string      `json:"recent_questions"`
	Turns           []answer.Turn `json:"turns"`
	UpdatedAt       time.Time     `json:"updated_at,omitzero"`
}
