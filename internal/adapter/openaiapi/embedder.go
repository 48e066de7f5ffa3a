package openaiapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"product-query-bot/internal/domain"
)

// Embedder calls an OpenAI-compatible /embeddings endpoint.
type Embedder struct {
	Model string
	t     *transport
}

// NewEmbedder constructs an embedder against the given base URL, e.g.
// "https://api.openai.com/v1".
func NewEmbedder(baseURL, apiKey, model string, client *http.Client, minGap time.Duration) *Embedder {
	return &Embedder{
		Model: model,
		t:     newTransport(baseURL, apiKey, client, minGap),
	}
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (e *Embedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	slog.Info("embed_started",
		slog.Int("text_count", len(texts)),
		slog.String("model", e.Model),
	)
	start := time.Now()

	payload, err := json.Marshal(embedRequest{
		Model: e.Model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := e.t.postJSON(ctx, "/embeddings", payload)
	if err != nil {
		slog.Error("embed_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("failed to call embeddings endpoint: %w", err)
	}

	var respBody embedResponse
	if err := json.Unmarshal(body, &respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respBody.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(respBody.Data))
	}

	// The API may return items out of order; the index field is authoritative.
	embeddings := make([][]float32, len(texts))
	for _, item := range respBody.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		embeddings[item.Index] = item.Embedding
	}

	slog.Info("embed_completed",
		slog.Int("embedding_count", len(embeddings)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return embeddings, nil
}

func (e *Embedder) Version() string {
	return e.Model
}

var _ domain.VectorEncoder = (*Embedder)(nil)
