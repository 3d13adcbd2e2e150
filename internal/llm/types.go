package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chat_model.go -package=mocks realty-assistant/internal/llm ChatModel
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks realty-assistant/internal/llm Embedder

import (
	"context"
	"time"
)

// Message represents a single message in a chat conversation.
// This type is used by answer generation, extraction and property research.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, no limit is applied.
	MaxTokens int

	// Temperature controls the randomness of the output.
	// Default is 0.7 if not specified.
	Temperature float32
}

// ChatModel is the capability the domain packages need from a chat model.
// *Client implements it.
type ChatModel interface {
	ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error)
}

// Embedder turns texts into vectors. *EmbeddingsClient implements it.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Observer is called after every model API call with the operation name,
// its duration and the resulting error (nil on success).
type Observer func(op string, elapsed time.Duration, err error)
