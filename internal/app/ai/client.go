// internal/app/ai/client.go

// Package ai generates marketing copy for events through a DeepSeek-
// compatible chat-completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultModel     = "deepseek-chat"
	defaultMaxTokens = 512
	defaultTemp      = 0.7
)

var (
	// ErrPaymentRequired means the provider rejected the request for billing
	// reasons (HTTP 402, e.g. insufficient balance). An administrator has to
	// intervene; retrying will not help.
	ErrPaymentRequired = errors.New("ai provider returned a payment error")
	// ErrUnavailable means the provider answered with a non-2xx status other
	// than 402. Usually transient.
	ErrUnavailable = errors.New("ai provider unavailable")
)

// TextClient is the one capability the copy services consume:
// a system+user prompt pair in, generated text out.
type TextClient interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client talks to a DeepSeek-compatible chat-completions API.
type Client struct {
	apiURL string
	apiKey string
	model  string
	http   *http.Client
}

// NewClient builds a client for the given endpoint. An empty model falls
// back to deepseek-chat.
func NewClient(apiURL, apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Stream      bool      `json:"stream"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// GenerateText sends one system+user exchange and returns the first
// choice's content, trimmed. Non-2xx statuses are classified into
// ErrPaymentRequired (402) or ErrUnavailable (everything else) so callers
// can report them precisely.
func (c *Client) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream:      false,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemp,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ai provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch {
		case resp.StatusCode == http.StatusPaymentRequired:
			return "", fmt.Errorf("%w: status=%d body=%s", ErrPaymentRequired, resp.StatusCode, body)
		default:
			return "", fmt.Errorf("%w: status=%d body=%s", ErrUnavailable, resp.StatusCode, body)
		}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("empty response from ai provider")
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("no message content in ai response")
	}
	return content, nil
}
