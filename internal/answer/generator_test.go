package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"realty-assistant/internal/llm"
	llm_mocks "realty-assistant/internal/llm/mocks"
	"realty-assistant/internal/retrieval"

	"go.uber.org/mock/gomock"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func scored(index int, text string) retrieval.ScoredChunk {
	return retrieval.ScoredChunk{
		Chunk: retrieval.Chunk{Index: index, StartOffset: 0, EndOffset: len([]rune(text)), Text: text},
		Score: 1,
	}
}

func TestGenerator_Generate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := llm_mocks.NewMockChatModel(ctrl)
	chunks := []retrieval.ScoredChunk{
		scored(2, "The closing date is July 15, 2024."),
		scored(5, "The purchase price is $350,000."),
	}

	var got []llm.Message
	model.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), llm.ChatParams{MaxTokens: 2000, Temperature: 0.1}).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			got = messages
			return "```json\n{\"answer\": \"July 15, 2024\", \"confidence\": 0.9, \"reasoning\": \"Stated in chunk 2\", \"source_chunks\": [2]}\n```", nil
		})

	g := NewGenerator(model)
	ans, err := g.Generate(context.Background(), "When is closing?", chunks, ConversationContext{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if ans.Text != "July 15, 2024" || ans.Confidence != 0.9 || ans.Reasoning != "Stated in chunk 2" {
		t.Errorf("Generate() = %+v", ans)
	}
	if len(ans.SourceChunks) != 1 || ans.SourceChunks[0] != 2 {
		t.Errorf("SourceChunks = %v, want [2]", ans.SourceChunks)
	}

	if len(got) != 2 || got[0].Role != "system" || got[1].Role != "user" {
		t.Fatalf("messages = %+v, want system then user", got)
	}
	prompt := got[1].Content
	for _, want := range []string{
		"[Chunk 2]: The closing date is July 15, 2024.\n\n[Chunk 5]: The purchase price is $350,000.",
		"QUESTION: When is closing?",
		`"source_chunks"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "conversation context") {
		t.Error("prompt mentions conversation context without history")
	}
}

func TestGenerator_Generate_NoChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No EXPECT: any model call fails the test.
	g := NewGenerator(llm_mocks.NewMockChatModel(ctrl))

	ans, err := g.Generate(context.Background(), "What is the price?", nil, ConversationContext{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if ans.Text != NoContextAnswer || ans.Confidence != NoContextConfidence {
		t.Errorf("Generate() = %+v, want canned answer", ans)
	}
	if ans.SourceChunks == nil || len(ans.SourceChunks) != 0 {
		t.Errorf("SourceChunks = %v, want empty slice", ans.SourceChunks)
	}
}

func TestGenerator_Generate_IncludesHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	longAnswer := strings.Repeat("é", 250)
	conv := ConversationContext{
		ConversationID: "conv-1",
		Turns: []Turn{
			{Question: "first question", Answer: "first answer", At: time.Now()},
			{Question: "who is the buyer?", Answer: "John Doe", At: time.Now()},
			{Question: "what about the seller?", Answer: longAnswer, At: time.Now()},
		},
	}

	model := llm_mocks.NewMockChatModel(ctrl)
	var prompt string
	model.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			prompt = messages[len(messages)-1].Content
			return `{"answer": "Jane Smith", "confidence": 0.8, "reasoning": "", "source_chunks": []}`, nil
		})

	_, err := NewGenerator(model).Generate(context.Background(), "and the agent?", []retrieval.ScoredChunk{scored(0, "Agent: Jane Smith")}, conv)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if strings.Contains(prompt, "first question") {
		t.Error("prompt includes a turn older than the last two")
	}
	if !strings.Contains(prompt, "Previous Q: who is the buyer?\nPrevious A: John Doe...") {
		t.Error("prompt missing second-to-last turn")
	}
	if !strings.Contains(prompt, "Previous A: "+strings.Repeat("é", 200)+"...") {
		t.Error("prior answer not truncated to 200 characters")
	}
	if strings.Contains(prompt, strings.Repeat("é", 201)) {
		t.Error("prior answer longer than 200 characters")
	}
	if !strings.Contains(prompt, "Current question: and the agent?") {
		t.Error("prompt missing current question")
	}
}

func TestGenerator_Generate_MalformedOutput(t *testing.T) {
	chunks := []retrieval.ScoredChunk{scored(1, "Earnest money: $5,000")}

	tests := []struct {
		name   string
		output string
	}{
		{name: "not JSON", output: "The earnest money is $5,000."},
		{name: "empty answer", output: `{"answer": "  ", "confidence": 0.5}`},
		{name: "missing confidence", output: `{"answer": "$5,000"}`},
		{name: "confidence above one", output: `{"answer": "$5,000", "confidence": 1.5}`},
		{name: "negative confidence", output: `{"answer": "$5,000", "confidence": -0.1}`},
		{name: "confidence wrong type", output: `{"answer": "$5,000", "confidence": "high"}`},
		{name: "cites unknown chunk", output: `{"answer": "$5,000", "confidence": 0.9, "source_chunks": [1, 7]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			model := llm_mocks.NewMockChatModel(ctrl)
			model.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.output, nil)

			_, err := NewGenerator(model).Generate(context.Background(), "earnest money?", chunks, ConversationContext{})
			if !errors.Is(err, llm.ErrMalformedResponse) {
				t.Errorf("Generate() error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestGenerator_Generate_ModelError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	modelErr := errors.New("connection refused")
	model := llm_mocks.NewMockChatModel(ctrl)
	model.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return("", modelErr)

	_, err := NewGenerator(model).Generate(context.Background(), "q", []retrieval.ScoredChunk{scored(0, "text")}, ConversationContext{})
	if !errors.Is(err, modelErr) {
		t.Errorf("Generate() error = %v, want wrapped model error", err)
	}
	if errors.Is(err, llm.ErrMalformedResponse) {
		t.Error("transport error reported as malformed output")
	}
}

func TestGenerator_Summarize(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := []retrieval.Chunk{
		{Index: 0, Text: "alpha"},
		{Index: 1, Text: "beta"},
		{Index: 2, Text: "gamma"},
		{Index: 3, Text: "delta"},
	}

	model := llm_mocks.NewMockChatModel(ctrl)
	model.EXPECT().
		ChatWithMessages(gomock.Any(), gomock.Any(), llm.ChatParams{MaxTokens: 1000, Temperature: 0.1}).
		DoAndReturn(func(_ context.Context, messages []llm.Message, _ llm.ChatParams) (string, error) {
			prompt := messages[0].Content
			if !strings.Contains(prompt, "alpha beta gamma") {
				t.Errorf("summary prompt missing first three chunks: %q", prompt)
			}
			if strings.Contains(prompt, "delta") {
				t.Error("summary prompt includes the fourth chunk")
			}
			if !strings.Contains(prompt, "under 200 words") {
				t.Error("summary prompt missing word limit")
			}
			return "  A settlement statement.  ", nil
		})

	summary, err := NewGenerator(model).Summarize(context.Background(), chunks)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != "A settlement statement." {
		t.Errorf("Summarize() = %q", summary)
	}
}

func TestGenerator_Summarize_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	g := NewGenerator(llm_mocks.NewMockChatModel(ctrl))
	summary, err := g.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if summary != NoContentSummary {
		t.Errorf("Summarize() = %q, want %q", summary, NoContentSummary)
	}
}

func TestGenerator_Summarize_BlankOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := llm_mocks.NewMockChatModel(ctrl)
	model.EXPECT().ChatWithMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(" \n", nil)

	_, err := NewGenerator(model).Summarize(context.Background(), []retrieval.Chunk{{Text: "x"}})
	if !errors.Is(err, llm.ErrMalformedResponse) {
		t.Errorf("Summarize() error = %v, want ErrMalformedResponse", err)
	}
}
