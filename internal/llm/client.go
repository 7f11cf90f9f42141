package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client abstracts a chat-completion backend. GenerateJSON asks the model
// for a single JSON object; providers without a native JSON mode fall back
// to plain generation and rely on the prompt.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
	GenerateJSON(ctx context.Context, messages []Message) (Response, error)
}
