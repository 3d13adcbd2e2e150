// Package answer turns retrieved document excerpts into grounded answers and summaries.
package answer

import (
	"context"
	"fmt"
	"strings"

	"realty-assistant/internal/contextutil"
	"realty-assistant/internal/llm"
	"realty-assistant/internal/retrieval"
)

const (
	// NoContextAnswer is returned without a model call when retrieval found nothing.
	NoContextAnswer = "I couldn't find relevant information in the document to answer your question."
	// NoContextConfidence is the confidence reported with NoContextAnswer.
	NoContextConfidence = 0.1
	// NoContentSummary is returned when a document has no chunks to summarize.
	NoContentSummary = "No content available to summarize."

	answerTemperature = 0.1
	answerMaxTokens   = 2000
	summaryMaxTokens  = 1000
)

// Answer is the parsed result of one generation call.
type Answer struct {
	Text         string  `json:"answer"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
	SourceChunks []int   `json:"source_chunks"`
}

// Generator produces answers and summaries with a chat model.
type Generator struct {
	model llm.ChatModel
}

// NewGenerator creates a Generator backed by model.
func NewGenerator(model llm.ChatModel) *Generator {
	return &Generator{model: model}
}

// rawAnswer mirrors the JSON object requested from the model.
// Confidence is a pointer so a missing value can be told apart from 0.
type rawAnswer struct {
	Answer       string   `json:"answer"`
	Confidence   *float64 `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	SourceChunks []int    `json:"source_chunks"`
}

// Generate answers question from chunks, taking the last turns of conv into account.
// With no chunks the canned NoContextAnswer is returned and the model is not called.
// Model output that does not parse or fails validation wraps llm.ErrMalformedResponse.
func (g *Generator) Generate(ctx context.Context, question string, chunks []retrieval.ScoredChunk, conv ConversationContext) (Answer, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) == 0 {
		logger.InfoContext(ctx, "no chunks for question, skipping model call")
		return Answer{
			Text:         NoContextAnswer,
			Confidence:   NoContextConfidence,
			Reasoning:    "No relevant text chunks were found for the question.",
			SourceChunks: []int{},
		}, nil
	}

	history := conv.Recent(historyTurns)
	prompt := buildAnswerPrompt(withHistory(question, history), chunks)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}

	logger.DebugContext(ctx, "sending answer request",
		"chunks", len(chunks),
		"history_turns", len(history),
		"prompt_length", len(prompt),
	)

	raw, err := g.model.ChatWithMessages(ctx, messages, llm.ChatParams{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	ans, err := parseAnswer(raw, chunks)
	if err != nil {
		logger.WarnContext(ctx, "model returned unusable answer", "error", err, "output_length", len(raw))
		return Answer{}, err
	}

	logger.InfoContext(ctx, "answer generated",
		"confidence", ans.Confidence,
		"source_chunks", ans.SourceChunks,
	)
	return ans, nil
}

// Summarize produces a short summary from the first chunks of a document.
func (g *Generator) Summarize(ctx context.Context, chunks []retrieval.Chunk) (string, error) {
	if len(chunks) == 0 {
		return NoContentSummary, nil
	}

	summary, err := g.model.ChatWithMessages(ctx, []llm.Message{
		{Role: "user", Content: buildSummaryPrompt(chunks)},
	}, llm.ChatParams{
		MaxTokens:   summaryMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate summary: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", llm.ErrMalformedResponse)
	}
	return summary, nil
}

func parseAnswer(raw string, chunks []retrieval.ScoredChunk) (Answer, error) {
	var parsed rawAnswer
	if err := llm.ParseJSONObject(raw, &parsed); err != nil {
		return Answer{}, err
	}

	parsed.Answer = strings.TrimSpace(parsed.Answer)
	if parsed.Answer == "" {
		return Answer{}, fmt.Errorf("%w: empty answer", llm.ErrMalformedResponse)
	}
	if parsed.Confidence == nil {
		return Answer{}, fmt.Errorf("%w: missing confidence", llm.ErrMalformedResponse)
	}
	if c := *parsed.Confidence; c < 0 || c > 1 {
		return Answer{}, fmt.Errorf("%w: confidence %v outside [0, 1]", llm.ErrMalformedResponse, c)
	}

	given := make(map[int]struct{}, len(chunks))
	for _, c := range chunks {
		given[c.Index] = struct{}{}
	}
	sources := make([]int, 0, len(parsed.SourceChunks))
	for _, idx := range parsed.SourceChunks {
		if _, ok := given[idx]; !ok {
			return Answer{}, fmt.Errorf("%w: cited chunk %d was not provided", llm.ErrMalformedResponse, idx)
		}
		sources = append(sources, idx)
	}

	return Answer{
		Text:         parsed.Answer,
		Confidence:   *parsed.Confidence,
		Reasoning:    strings.TrimSpace(parsed.Reasoning),
		SourceChunks: sources,
	}, nil
}

