package classify

import (
	"context"
	"fmt"

	"bn9-backend/internal/llm"
)

// Summarizer produces a free-text insight summary of a log transcript for
// the dashboard.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

type LLMSummarizer struct {
	client llm.Client
}

func NewLLMSummarizer(client llm.Client) *LLMSummarizer {
	return &LLMSummarizer{client: client}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := s.client.Generate(ctx, []llm.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: transcript},
	})
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}
	return resp.Content, nil
}

type MockSummarizer struct{}

func (MockSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	return fmt.Sprintf("mock summary over %d bytes of transcript (no LLM credential configured)", len(transcript)), nil
}
