package openaiapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"product-query-bot/internal/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// ChatClient sends system/user prompt pairs to an OpenAI-compatible
// /chat/completions endpoint and returns the assistant message.
type ChatClient struct {
	Model string
	t     *transport
}

// NewChatClient constructs a client using the provided endpoint and model name.
func NewChatClient(baseURL, apiKey, model string, client *http.Client, minGap time.Duration) *ChatClient {
	return &ChatClient{
		Model: model,
		t:     newTransport(baseURL, apiKey, client, minGap),
	}
}

// Complete sends the prompts and returns the trimmed assistant message.
func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string, opts domain.GenerationOptions) (string, error) {
	slog.Info("chat_completion_started",
		slog.String("model", c.Model),
		slog.Int("max_tokens", opts.MaxTokens),
	)
	start := time.Now()

	payload, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	body, err := c.t.postJSON(ctx, "/chat/completions", payload)
	if err != nil {
		slog.Error("chat_completion_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return "", fmt.Errorf("failed to call chat endpoint: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("chat response contained no choices")
	}

	slog.Info("chat_completion_completed",
		slog.Duration("elapsed", time.Since(start)),
	)

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// Version returns the wrapped model name.
func (c *ChatClient) Version() string {
	return c.Model
}

var _ domain.LLMClient = (*ChatClient)(nil)
