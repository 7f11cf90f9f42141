package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const (
	replyEndpoint = "https://api.line.me/v2/bot/message/reply"
	pushEndpoint  = "https://api.line.me/v2/bot/message/push"
)

// Messenger is the outbound side of the LINE Messaging API: a single-use
// reply tied to an inbound event, and a free-form push to a known user or
// group id.
type Messenger interface {
	Reply(ctx context.Context, replyToken, text string) error
	Push(ctx context.Context, to, text string) error
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Client talks to the real LINE Messaging API.
type Client struct {
	token string
	http  *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token: token,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	return c.post(ctx, replyEndpoint, replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: "text", Text: text}},
	})
}

func (c *Client) Push(ctx context.Context, to, text string) error {
	return c.post(ctx, pushEndpoint, pushRequest{
		To:       to,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("line api call failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line api returned %d: %s", resp.StatusCode, snippet)
	}
	return nil
}

// MockMessenger logs outbound messages instead of sending them. It is used
// when no channel access token is configured.
type MockMessenger struct{}

func (MockMessenger) Reply(_ context.Context, replyToken, text string) error {
	log.Printf("[LINE MOCK] reply token=%s text=%q", replyToken, text)
	return nil
}

func (MockMessenger) Push(_ context.Context, to, text string) error {
	log.Printf("[LINE MOCK] push to=%s text=%q", to, text)
	return nil
}

// New selects the real client when a channel access token is configured and
// the logging mock otherwise, so callers never branch per call.
func New(token string) Messenger {
	if token == "" {
		log.Printf("LINE_CHANNEL_ACCESS_TOKEN is not set, outbound messages will only be logged")
		return MockMessenger{}
	}
	return NewClient(token)
}
