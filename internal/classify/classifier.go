package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"bn9-backend/internal/llm"
)

const (
	// DefaultCategory is used whenever the model does not supply one.
	DefaultCategory = "other"
	// DefaultEmotion is used whenever the model does not supply one.
	DefaultEmotion = "unclear"
)

// Verdict is the structured result of classifying one inbound message.
type Verdict struct {
	Reply    string `json:"reply"`
	Category string `json:"category"`
	Emotion  string `json:"emotion,omitempty"`
	Tone     string `json:"tone,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Classifier turns free customer text into a Verdict. It never fails: any
// backend error is absorbed into a fallback verdict so the pipeline always
// has a reply to send.
type Classifier interface {
	Classify(ctx context.Context, text string) Verdict
}

// Fallback is the verdict used when the LLM backend is unreachable or
// returns something unusable.
func Fallback(reason string) Verdict {
	return Verdict{
		Reply:    "Sorry, we are having a temporary issue on our side 🙏 Please send your message again in a moment.",
		Category: DefaultCategory,
		Emotion:  DefaultEmotion,
		Tone:     "apologetic",
		Reason:   reason,
	}
}

type LLMClassifier struct {
	client llm.Client
}

func NewLLM(client llm.Client) *LLMClassifier {
	return &LLMClassifier{client: client}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) Verdict {
	v, err := c.classify(ctx, text)
	if err != nil {
		log.Printf("classification unavailable, using fallback: %v", err)
		return Fallback(fmt.Sprintf("classification failed: %v", err))
	}
	return v
}

func (c *LLMClassifier) classify(ctx context.Context, text string) (Verdict, error) {
	resp, err := c.client.GenerateJSON(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt(text)},
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("llm call failed: %w", err)
	}

	var v Verdict
	if err := json.Unmarshal([]byte(resp.Content), &v); err != nil {
		return Verdict{}, fmt.Errorf("unparsable verdict %q: %w", resp.Content, err)
	}
	if v.Reply == "" {
		return Verdict{}, fmt.Errorf("verdict is missing the reply field")
	}
	if v.Category == "" {
		v.Category = DefaultCategory
	}
	if v.Emotion == "" {
		v.Emotion = DefaultEmotion
	}
	return v, nil
}

// Mock is used when no LLM credential is configured. It echoes the input so
// local and integration runs are deterministic.
type Mock struct{}

func (Mock) Classify(_ context.Context, text string) Verdict {
	return Verdict{
		Reply:    fmt.Sprintf("We received your message: %q (mock reply, no LLM credential configured)", text),
		Category: DefaultCategory,
		Emotion:  DefaultEmotion,
		Tone:     "neutral",
		Reason:   "no LLM credential configured",
	}
}
