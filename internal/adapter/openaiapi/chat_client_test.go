package openaiapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"product-query-bot/internal/domain"
)

func TestChatClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, float32(0.7), req.Temperature)
		assert.Equal(t, 300, req.MaxTokens)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  The shampoo costs $15.99.  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "", "gpt-4o", srv.Client(), 0)

	text, err := c.Complete(context.Background(), "persona", "question", domain.GenerationOptions{
		Temperature: 0.7,
		MaxTokens:   300,
	})
	assert.NoError(t, err)
	assert.Equal(t, "The shampoo costs $15.99.", text, "response should be trimmed")
}

func TestChatClient_Complete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "", "gpt-4o", srv.Client(), 0)

	_, err := c.Complete(context.Background(), "sys", "user", domain.GenerationOptions{})
	assert.ErrorContains(t, err, "no choices")
}

func TestChatClient_Complete_RetriesOnQuotaError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "", "gpt-4o", srv.Client(), 0)

	text, err := c.Complete(context.Background(), "sys", "user", domain.GenerationOptions{})
	assert.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestChatClient_Complete_GivesUpAfterSingleRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewChatClient(srv.URL, "", "gpt-4o", srv.Client(), 0)

	_, err := c.Complete(context.Background(), "sys", "user", domain.GenerationOptions{})
	assert.ErrorContains(t, err, "api returned 503")
	assert.Equal(t, int32(2), calls.Load())
}
