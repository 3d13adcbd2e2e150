package rag_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"realty-assistant/internal/answer"
	"realty-assistant/internal/rag"
	rag_mocks "realty-assistant/internal/rag/mocks"
	"realty-assistant/internal/retrieval"
	"realty-assistant/internal/service"
	"realty-assistant/internal/storage"

	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type testStores struct {
	documents     *storage.DocumentRepo
	chunks        *storage.ChunkRepo
	conversations *storage.ConversationRepo
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return testStores{
		documents:     storage.NewDocumentRepo(db),
		chunks:        storage.NewChunkRepo(db),
		conversations: storage.NewConversationRepo(db),
	}
}

// seedDocument stores a document whose chunks are the given texts.
func seedDocument(t *testing.T, s testStores, pages int, texts ...string) *storage.DocumentRecord {
	t.Helper()
	ctx := context.Background()

	doc := &storage.DocumentRecord{
		Name:   "settlement.pdf",
		Format: "pdf",
		Title:  "Settlement Statement",
		Pages:  pages,
		Hash:   fmt.Sprintf("hash-%s-%d", t.Name(), len(texts)),
		Text:   strings.Join(texts, " "),
	}
	if err := s.documents.Insert(ctx, doc); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	records := make([]*storage.ChunkRecord, 0, len(texts))
	offset := 0
	for i, text := range texts {
		n := len([]rune(text))
		records = append(records, &storage.ChunkRecord{
			DocumentID:  doc.ID,
			ChunkIndex:  i,
			StartOffset: offset,
			EndOffset:   offset + n,
			Text:        text,
		})
		offset += n + 1
	}
	if err := s.chunks.InsertBatch(ctx, records); err != nil {
		t.Fatalf("InsertBatch() error = %v", err)
	}
	return doc
}

func newEngine(s testStores, gen rag.Generator, cfg rag.Config) rag.Engine {
	return rag.NewEngine(s.documents, s.chunks, s.conversations, gen, cfg, nil)
}

var settlementChunks = []string{
	"Buyer: John Doe. Seller: Jane Smith.",
	"The purchase price of the property is $350,000.",
	"The closing date is July 15, 2024 at the title office.",
}

func TestEngine_Ask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := newTestStores(t)
	doc := seedDocument(t, s, 2, settlementChunks...)
	gen := rag_mocks.NewMockGenerator(ctrl)

	gen.EXPECT().
		Generate(gomock.Any(), "What is the purchase price?", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, chunks []retrieval.ScoredChunk, conv answer.ConversationContext) (answer.Answer, error) {
			if len(chunks) == 0 || chunks[0].Index != 1 {
				t.Errorf("top chunk = %+v, want chunk 1", chunks)
			}
			if len(conv.Turns) != 0 {
				t.Errorf("new conversation has %d turns", len(conv.Turns))
			}
			if conv.ConversationID == "" {
				t.Error("new conversation has no ID")
			}
			return answer.Answer{Text: "$350,000", Confidence: 0.95, Reasoning: "chunk 1", SourceChunks: []int{1}}, nil
		})

	engine := newEngine(s, gen, rag.Config{TopK: 2})
	resp, err := engine.Ask(context.Background(), rag.AskRequest{DocumentID: doc.ID, Question: "  What is the purchase price?  "})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if resp.Answer != "$350,000" || resp.Confidence != 0.95 || resp.Reasoning != "chunk 1" {
		t.Errorf("Ask() = %+v", resp)
	}
	if resp.ConversationID == "" {
		t.Error("Ask() returned no conversation ID")
	}
	if resp.Debug != nil {
		t.Error("Debug set without debug mode")
	}
	if len(resp.References) == 0 || len(resp.References) > 2 {
		t.Fatalf("References = %d, want 1-2", len(resp.References))
	}
	top := resp.References[0]
	if top.ChunkIndex != 1 || !top.Cited || top.Preview != settlementChunks[1] {
		t.Errorf("top reference = %+v", top)
	}
	if top.MatchedTerms == nil {
		t.Error("MatchedTerms is nil, want a slice")
	}

	conv, err := engine.Conversation(context.Background(), resp.ConversationID)
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if conv.TotalQuestions != 1 || conv.DocumentID != doc.ID {
		t.Errorf("Conversation() = %+v", conv)
	}
	if conv.Turns[0].Question != "What is the purchase price?" || conv.Turns[0].Answer != "$350,000" {
		t.Errorf("stored turn = %+v", conv.Turns[0])
	}
}

func TestEngine_Ask_ContinuesConversation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := newTestStores(t)
	doc := seedDocument(t, s, 1, settlementChunks...)
	gen := rag_mocks.NewMockGenerator(ctrl)
	engine := newEngine(s, gen, rag.Config{TopK: 3})
	ctx := context.Background()

	gen.EXPECT().Generate(gomock.Any(), "Who is the buyer?", gomock.Any(), gomock.Any()).
		Return(answer.Answer{Text: "John Doe", Confidence: 0.9, SourceChunks: []int{0}}, nil)
	first, err := engine.Ask(ctx, rag.AskRequest{DocumentID: doc.ID, Question: "Who is the buyer?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	gen.EXPECT().Generate(gomock.Any(), "And the seller?", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []retrieval.ScoredChunk, conv answer.ConversationContext) (answer.Answer, error) {
			if conv.ConversationID != first.ConversationID {
				t.Errorf("conversation ID = %q, want %q", conv.ConversationID, first.ConversationID)
			}
			if len(conv.Turns) != 1 || conv.Turns[0].Answer != "John Doe" {
				t.Errorf("history = %+v, want the first turn", conv.Turns)
			}
			return answer.Answer{Text: "Jane Smith", Confidence: 0.9}, nil
		})
	second, err := engine.Ask(ctx, rag.AskRequest{DocumentID: doc.ID, Question: "And the seller?", ConversationID: first.ConversationID})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Errorf("second ConversationID = %q, want %q", second.ConversationID, first.ConversationID)
	}

	gen.EXPECT().Generate(gomock.Any(), "Closing date?", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []retrieval.ScoredChunk, conv answer.ConversationContext) (answer.Answer, error) {
			if len(conv.Turns) != 0 {
				t.Errorf("SkipHistory passed %d turns", len(conv.Turns))
			}
			return answer.Answer{Text: "July 15, 2024", Confidence: 0.9}, nil
		})
	if _, err := engine.Ask(ctx, rag.AskRequest{DocumentID: doc.ID, Question: "Closing date?", ConversationID: first.ConversationID, SkipHistory: true}); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	conv, err := engine.Conversation(ctx, first.ConversationID)
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	want := []string{"Who is the buyer?", "And the seller?", "Closing date?"}
	if strings.Join(conv.RecentQuestions, "|") != strings.Join(want, "|") {
		t.Errorf("RecentQuestions = %v, want %v", conv.RecentQuestions, want)
	}
}

func TestEngine_Ask_TrimsHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := newTestStores(t)
	doc := seedDocument(t, s, 1, settlementChunks...)
	gen := rag_mocks.NewMockGenerator(ctrl)
	engine := newEngine(s, gen, rag.Config{TopK: 3, HistoryLimit: 2})
	ctx := context.Background()

	gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(answer.Answer{Text: "ok", Confidence: 0.5}, nil).Times(4)

	convID := ""
	for i := range 4 {
		resp, err := engine.Ask(ctx, rag.AskRequest{DocumentID: doc.ID, Question: fmt.Sprintf("question %d price", i), ConversationID: convID})
		if err != nil {
			t.Fatalf("Ask() error = %v", err)
		}
		convID = resp.ConversationID
	}

	conv, err := engine.Conversation(ctx, convID)
	if err != nil {
		t.Fatalf("Conversation() error = %v", err)
	}
	if conv.TotalQuestions != 2 {
		t.Fatalf("TotalQuestions = %d, want 2", conv.TotalQuestions)
	}
	if conv.Turns[0].Question != "question 2 price" || conv.Turns[1].Question != "question 3 price" {
		t.Errorf("kept turns = %+v, want the last two", conv.Turns)
	}
}

func TestEngine_Ask_TopK(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("Chunk %d mentions the escrow deposit.", i)
	}

	tests := []struct {
		name       string
		configTopK int
		reqTopK    int
		wantChunks int
	}{
		{name: "config default", configTopK: 3, reqTopK: 0, wantChunks: 3},
		{name: "request value", configTopK: 3, reqTopK: 7, wantChunks: 7},
		{name: "clamped to max", configTopK: 3, reqTopK: 50, wantChunks: rag.MaxTopK},
		{name: "clamped to min", configTopK: 3, reqTopK: -4, wantChunks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s := newTestStores(t)
			doc := seedDocument(t, s, 1, texts...)
			gen := rag_mocks.NewMockGenerator(ctrl)

			var got int
			gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, chunks []retrieval.ScoredChunk, _ answer.ConversationContext) (answer.Answer, error) {
					got = len(chunks)
					return answer.Answer{Text: "ok", Confidence: 0.5}, nil
				})

			engine := newEngine(s, gen, rag.Config{TopK: tt.configTopK})
			resp, err := engine.Ask(context.Background(), rag.AskRequest{DocumentID: doc.ID, Question: "escrow deposit", TopK: tt.reqTopK, Debug: true})
			if err != nil {
				t.Fatalf("Ask() error = %v", err)
			}
			if got != tt.wantChunks {
				t.Errorf("generator got %d chunks, want %d", got, tt.wantChunks)
			}
			if resp.Debug == nil || resp.Debug.TopK != tt.wantChunks || resp.Debug.TotalChunks != len(texts) {
				t.Errorf("Debug = %+v", resp.Debug)
			}
		})
	}
}

func TestEngine_Ask_Debug(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := newTestStores(t)
	doc := seedDocument(t, s, 1, settlementChunks...)
	gen := rag_mocks.NewMockGenerator(ctrl)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(answer.Answer{Text: "July 15, 2024", Confidence: 0.9, SourceChunks: []int{2}}, nil)

	resp, err := newEngine(s, gen, rag.Config{TopK: 2}).
		Ask(context.Background(), rag.AskRequest{DocumentID: doc.ID, Question: "closing date", Debug: true})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if resp.Debug == nil {
		t.Fatal("Debug = nil, want debug info")
	}
	if strings.Join(resp.Debug.Terms, ",") != "closing,date" {
		t.Errorf("Terms = %v, want [closing date]", resp.Debug.Terms)
	}
	if len(resp.Debug.RetrievedChunks) == 0 {
		t.Fatal("RetrievedChunks is empty")
	}
	first := resp.Debug.RetrievedChunks[0]
	if first.Rank != 1 || first.ChunkIndex != 2 || first.Text != settlementChunks[2] {
		t.Errorf("first retrieved chunk = %+v", first)
	}
}

func TestEngine_Ask_Errors(t *testing.T) {
	modelErr := errors.New("model unavailable")

	tests := []struct {
		name     string
		req      func(docID string) rag.AskRequest
		generate bool
		wantErr  error
	}{
		{
			name:    "empty question",
			req:     func(docID string) rag.AskRequest { return rag.AskRequest{DocumentID: docID, Question: "   "} },
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "missing document ID",
			req:     func(string) rag.AskRequest { return rag.AskRequest{Question: "price?"} },
			wantErr: service.ErrInvalidInput,
		},
		{
			name:    "unknown document",
			req:     func(string) rag.AskRequest { return rag.AskRequest{DocumentID: "missing", Question: "price?"} },
			wantErr: service.ErrNotFound,
		},
		{
			name:     "model failure",
			req:      func(docID string) rag.AskRequest { return rag.AskRequest{DocumentID: docID, Question: "price?"} },
			generate: true,
			wantErr:  service.ErrExternalService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s := newTestStores(t)
			doc := seedDocument(t, s, 1, settlementChunks...)
			gen := rag_mocks.NewMockGenerator(ctrl)
			if tt.generate {
				gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(answer.Answer{}, modelErr)
			}

			_, err := newEngine(s, gen, rag.Config{}).Ask(context.Background(), tt.req(doc.ID))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Ask() error = %v, want %v", err, tt.wantErr)
			}
			if tt.generate && !errors.Is(err, modelErr) {
				t.Errorf("Ask() error = %v, want wrapped model error", err)
			}
		})
	}
}

func TestEngine_Ask_ConversationOfOtherDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := newTestStores(t)
	docA := seedDocument(t, s, 1, "Document A price $100.")
	docB := seedDocument(t, s, 1, "Document B price $200.", "second chunk")
	gen := rag_mocks.NewMockGenerator(ctrl)
	engine := newEngine(s, gen, rag.Config{})
	ctx := context.Background()

	gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(answer.Answer{Text: "$100", Confidence: 0.9}, nil)
	resp, err := engine.Ask(ctx, rag.AskRequest{DocumentID: docA.ID, Question: "price?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	_, err = engine.Ask(ctx, rag.AskRequest{DocumentID: docB.ID, Question: "price?", ConversationID: resp.ConversationID})
	var vErr *service.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "conversation_id" {
		t.Errorf("Ask() error = %v, want conversation_id validation error", err)
	}
}

func TestEngine_Summarize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := newTestStores(t)
	doc := seedDocument(t, s, 1, settlementChunks...)
	gen := rag_mocks.NewMockGenerator(ctrl)
	gen.EXPECT().Summarize(gomock.Any(), gomock.Len(3)).Return("A settlement statement.", nil)

	summary, err := newEngine(s, gen, rag.Config{}).Summarize(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary.DocumentID != doc.ID || summary.Title != "Settlement Statement" || summary.Summary != "A settlement statement." {
		t.Errorf("Summarize() = %+v", summary)
	}
}

func TestEngine_Summarize_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := newEngine(newTestStores(t), rag_mocks.NewMockGenerator(ctrl), rag.Config{}).Summarize(context.Background(), "missing")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Summarize() error = %v, want ErrNotFound", err)
	}
}

func TestEngine_SuggestedQuestions(t *testing.T) {
	tests := []struct {
		name      string
		pages     int
		wantFirst string
	}{
		{name: "short document", pages: 3, wantFirst: "What is the property address?"},
		{name: "long document", pages: 11, wantFirst: "Can you summarize the main sections of this document?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s := newTestStores(t)
			doc := seedDocument(t, s, tt.pages, settlementChunks...)

			got, err := newEngine(s, rag_mocks.NewMockGenerator(ctrl), rag.Config{}).SuggestedQuestions(context.Background(), doc.ID)
			if err != nil {
				t.Fatalf("SuggestedQuestions() error = %v", err)
			}
			if len(got) != 8 {
				t.Errorf("SuggestedQuestions() returned %d questions, want 8", len(got))
			}
			if got[0] != tt.wantFirst {
				t.Errorf("first suggestion = %q, want %q", got[0], tt.wantFirst)
			}
		})
	}
}

func TestEngine_ClearConversation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := newTestStores(t)
	doc := seedDocument(t, s, 1, settlementChunks...)
	gen := rag_mocks.NewMockGenerator(ctrl)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(answer.Answer{Text: "ok", Confidence: 0.5}, nil)
	engine := newEngine(s, gen, rag.Config{})
	ctx := context.Background()

	resp, err := engine.Ask(ctx, rag.AskRequest{DocumentID: doc.ID, Question: "price?"})
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	removed, err := engine.ClearConversation(ctx, resp.ConversationID)
	if err != nil {
		t.Fatalf("ClearConversation() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("ClearConversation() = %d, want 1", removed)
	}

	if _, err := engine.Conversation(ctx, resp.ConversationID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Conversation() after clear error = %v, want ErrNotFound", err)
	}
	if _, err := engine.ClearConversation(ctx, " "); !errors.Is(err, service.ErrInvalidInput) {
		t.Errorf("ClearConversation(blank) error = %v, want ErrInvalidInput", err)
	}
}
