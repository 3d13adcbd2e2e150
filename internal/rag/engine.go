package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks realty-assistant/internal/rag Engine
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_generator.go -package=mocks realty-assistant/internal/rag Generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"realty-assistant/internal/answer"
	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/metrics"
	"realty-assistant/internal/retrieval"
	"realty-assistant/internal/service"
	"realty-assistant/internal/storage"
)

const (
	// MaxTopK is the largest chunk count a request may ask for.
	MaxTopK = 20
	// DefaultHistoryLimit is the number of turns kept per conversation.
	DefaultHistoryLimit = 20

	previewRunes    = 200
	recentQuestions = 3
	maxSuggestions  = 8
	manyPages       = 10
)

var baseSuggestions = []string{
	"What is the property address?",
	"What is the sale price?",
	"Who are the buyer and seller?",
	"When is the closing date?",
	"What is the commission amount?",
	"Are there any contingencies mentioned?",
	"What are the key terms of this agreement?",
	"What fees are mentioned in the document?",
	"Are there any special conditions?",
	"What is the earnest money amount?",
}

const sectionsSuggestion = "Can you summarize the main sections of this document?"

// Engine answers questions about loaded documents.
type Engine interface {
	// Ask answers a question from the chunks of one document.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// Summarize returns a model-written summary of a document.
	Summarize(ctx context.Context, documentID string) (Summary, error)
	// SuggestedQuestions returns starter questions for a document.
	SuggestedQuestions(ctx context.Context, documentID string) ([]string, error)
	// Conversation returns the stored history of a conversation.
	Conversation(ctx context.Context, conversationID string) (Conversation, error)
	// ClearConversation deletes a conversation and returns how many turns were removed.
	ClearConversation(ctx context.Context, conversationID string) (int, error)
}

// Generator is the answer-generation capability the engine needs.
// *answer.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, question string, chunks []retrieval.ScoredChunk, conv answer.ConversationContext) (answer.Answer, error)
	Summarize(ctx context.Context, chunks []retrieval.Chunk) (string, error)
}

// Config holds the engine tunables.
type Config struct {
	// TopK is used when a request does not set one.
	TopK int
	// HistoryLimit is the number of turns kept per conversation.
	HistoryLimit int
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	documents     storage.DocumentStore
	chunks        storage.ChunkStore
	conversations storage.ConversationStore
	generator     Generator
	metrics       *metrics.Metrics
	topK          int
	historyLimit  int
}

// NewEngine creates a new Q&A engine. m may be nil.
func NewEngine(
	documents storage.DocumentStore,
	chunks storage.ChunkStore,
	conversations storage.ConversationStore,
	generator Generator,
	cfg Config,
	m *metrics.Metrics,
) Engine {
	if cfg.TopK <= 0 {
		cfg.TopK = retrieval.DefaultTopK
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	return &ragEngine{
		documents:     documents,
		chunks:        chunks,
		conversations: conversations,
		generator:     generator,
		metrics:       m,
		topK:          clampTopK(cfg.TopK),
		historyLimit:  cfg.HistoryLimit,
	}
}

// Ask answers a question from the chunks of one document.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return AskResponse{}, &service.ValidationError{Field: "question", Message: "cannot be empty"}
	}
	k := e.topK
	if req.TopK != 0 {
		k = clampTopK(req.TopK)
	}

	logger.InfoContext(ctx, "question received",
		"document_id", req.DocumentID,
		"conversation_id", req.ConversationID,
		"top_k", k,
	)

	if _, err := e.document(ctx, req.DocumentID); err != nil {
		return AskResponse{}, err
	}
	chunks, err := e.documentChunks(ctx, req.DocumentID)
	if err != nil {
		return AskResponse{}, err
	}

	scored, err := retrieval.Retrieve(chunks, question, k)
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to retrieve chunks: %w", err)
	}
	e.metrics.ObserveRetrieval(len(scored))

	conv, err := e.loadConversation(ctx, req.ConversationID, req.DocumentID)
	if err != nil {
		return AskResponse{}, err
	}
	history := conv
	if req.SkipHistory {
		history = answer.ConversationContext{ConversationID: conv.ConversationID}
	}

	ans, err := e.generator.Generate(ctx, question, scored, history)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return AskResponse{}, service.External(err, "failed to generate answer")
	}

	if err := e.recordTurn(ctx, conv.ConversationID, req.DocumentID, question, ans); err != nil {
		return AskResponse{}, err
	}

	logger.InfoContext(ctx, "question answered",
		"document_id", req.DocumentID,
		"conversation_id", conv.ConversationID,
		"chunks_used", len(scored),
		"confidence", ans.Confidence,
	)

	resp := AskResponse{
		Answer:         ans.Text,
		Confidence:     ans.Confidence,
		Reasoning:      ans.Reasoning,
		ConversationID: conv.ConversationID,
		References:     buildReferences(scored, ans.SourceChunks),
	}
	if req.Debug {
		resp.Debug = buildDebugInfo(question, k, len(chunks), len(history.Turns), scored)
	}
	return resp, nil
}

// Summarize returns a model-written summary of a document.
func (e *ragEngine) Summarize(ctx context.Context, documentID string) (Summary, error) {
	doc, err := e.document(ctx, documentID)
	if err != nil {
		return Summary{}, err
	}
	chunks, err := e.documentChunks(ctx, documentID)
	if err != nil {
		return Summary{}, err
	}

	text, err := e.generator.Summarize(ctx, chunks)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to summarize document", "document_id", documentID, "error", err)
		return Summary{}, service.External(err, "failed to summarize document")
	}

	return Summary{DocumentID: doc.ID, Title: doc.Title, Summary: text}, nil
}

// SuggestedQuestions returns starter questions for a document.
// Long documents lead with a request for a section overview.
func (e *ragEngine) SuggestedQuestions(ctx context.Context, documentID string) ([]string, error) {
	doc, err := e.document(ctx, documentID)
	if err != nil {
		return nil, err
	}

	suggestions := make([]string, 0, len(baseSuggestions)+1)
	if doc.Pages > manyPages {
		suggestions = append(suggestions, sectionsSuggestion)
	}
	suggestions = append(suggestions, baseSuggestions...)
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}

// Conversation returns the stored history of a conversation.
func (e *ragEngine) Conversation(ctx context.Context, conversationID string) (Conversation, error) {
	if strings.TrimSpace(conversationID) == "" {
		return Conversation{}, &service.ValidationError{Field: "conversation_id", Message: "cannot be empty"}
	}

	records, err := e.conversations.ListRecent(ctx, conversationID, e.historyLimit)
	if err != nil {
		return Conversation{}, fmt.Errorf("failed to load conversation: %w", err)
	}
	if len(records) == 0 {
		return Conversation{}, fmt.Errorf("%w: conversation %s", service.ErrNotFound, conversationID)
	}

	conv := Conversation{
		ConversationID: conversationID,
		DocumentID:     records[0].DocumentID,
		TotalQuestions: len(records),
		Turns:          toTurns(records),
		UpdatedAt:      records[len(records)-1].CreatedAt,
	}
	start := max(len(records)-recentQuestions, 0)
	conv.RecentQuestions = make([]string, 0, len(records)-start)
	for _, r := range records[start:] {
		conv.RecentQuestions = append(conv.RecentQuestions, r.Question)
	}
	return conv, nil
}

// ClearConversation deletes a conversation and returns how many turns were removed.
func (e *ragEngine) ClearConversation(ctx context.Context, conversationID string) (int, error) {
	if strings.TrimSpace(conversationID) == "" {
		return 0, &service.ValidationError{Field: "conversation_id", Message: "cannot be empty"}
	}
	removed, err := e.conversations.Clear(ctx, conversationID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear conversation: %w", err)
	}
	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "conversation cleared", "conversation_id", conversationID, "turns", removed)
	return removed, nil
}

func (e *ragEngine) document(ctx context.Context, documentID string) (*storage.DocumentRecord, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, &service.ValidationError{Field: "document_id", Message: "cannot be empty"}
	}
	doc, err := e.documents.GetByID(ctx, documentID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: document %s", service.ErrNotFound, documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return doc, nil
}

func (e *ragEngine) documentChunks(ctx context.Context, documentID string) ([]retrieval.Chunk, error) {
	records, err := e.chunks.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	chunks := make([]retrieval.Chunk, 0, len(records))
	for _, r := range records {
		chunks = append(chunks, retrieval.Chunk{
			Index:       r.ChunkIndex,
			StartOffset: r.StartOffset,
			EndOffset:   r.EndOffset,
			Text:        r.Text,
		})
	}
	return chunks, nil
}

// loadConversation returns the history of conversationID, or a fresh
// conversation when the ID is empty. A conversation is bound to one document.
func (e *ragEngine) loadConversation(ctx context.Context, conversationID, documentID string) (answer.ConversationContext, error) {
	if conversationID == "" {
		return answer.ConversationContext{ConversationID: uuid.New().String(), Turns: []answer.Turn{}}, nil
	}

	records, err := e.conversations.ListRecent(ctx, conversationID, e.historyLimit)
	if err != nil {
		return answer.ConversationContext{}, fmt.Errorf("failed to load conversation: %w", err)
	}
	if len(records) > 0 && records[0].DocumentID != documentID {
		return answer.ConversationContext{}, &service.ValidationError{
			Field:   "conversation_id",
			Message: "belongs to a different document",
		}
	}
	return answer.ConversationContext{ConversationID: conversationID, Turns: toTurns(records)}, nil
}

func (e *ragEngine) recordTurn(ctx context.Context, conversationID, documentID, question string, ans answer.Answer) error {
	turn := &storage.TurnRecord{
		ConversationID: conversationID,
		DocumentID:     documentID,
		Question:       question,
		Answer:         ans.Text,
		Confidence:     ans.Confidence,
	}
	if err := e.conversations.Append(ctx, turn); err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	if err := e.conversations.Trim(ctx, conversationID, e.historyLimit); err != nil {
		return fmt.Errorf("failed to trim conversation: %w", err)
	}
	return nil
}

func toTurns(records []*storage.TurnRecord) []answer.Turn {
	turns := make([]answer.Turn, 0, len(records))
	for _, r := range records {
		turns = append(turns, answer.Turn{
			Question:   r.Question,
			Answer:     r.Answer,
			Confidence: r.Confidence,
			At:         r.CreatedAt,
		})
	}
	return turns
}

func buildReferences(scored []retrieval.ScoredChunk, cited []int) []Reference {
	citedSet := make(map[int]bool, len(cited))
	for _, idx := range cited {
		citedSet[idx] = true
	}

	refs := make([]Reference, 0, len(scored))
	for _, c := range scored {
		terms := c.MatchedTerms
		if terms == nil {
			terms = []string{}
		}
		refs = append(refs, Reference{
			ChunkIndex:   c.Index,
			Score:        c.Score,
			MatchedTerms: terms,
			Preview:      preview(c.Text),
			Cited:        citedSet[c.Index],
		})
	}
	return refs
}

func buildDebugInfo(question string, k, totalChunks, historyTurns int, scored []retrieval.ScoredChunk) *DebugInfo {
	info := &DebugInfo{
		Terms:           retrieval.ExtractTerms(question).Sorted(),
		TopK:            k,
		TotalChunks:     totalChunks,
		HistoryTurns:    historyTurns,
		RetrievedChunks: make([]RetrievedChunk, 0, len(scored)),
	}
	for i, c := range scored {
		terms := c.MatchedTerms
		if terms == nil {
			terms = []string{}
		}
		info.RetrievedChunks = append(info.RetrievedChunks, RetrievedChunk{
			ChunkIndex:   c.Index,
			StartOffset:  c.StartOffset,
			EndOffset:    c.EndOffset,
			Score:        c.Score,
			MatchedTerms: terms,
			Rank:         i + 1,
			Text:         c.Text,
		})
	}
	return info
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes]) + "..."
}

func clampTopK(k int) int {
	return min(max(k, 1), MaxTopK)
}
