package openaiapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmbedder_Encode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embedRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, []string{"first", "second"}, req.Input)

		// Items returned out of order on purpose; index must win.
		_, _ = w.Write([]byte(`{"data":[
			{"index":1,"embedding":[0.3,0.4]},
			{"index":0,"embedding":[0.1,0.2]}
		]}`))
	}))
	defer srv.Close()

	e := NewEmbedder(srv.URL, "test-key", "test-model", srv.Client(), 0)

	vecs, err := e.Encode(context.Background(), []string{"first", "second"})
	assert.NoError(t, err)
	assert.Equal(t, [][]float32{{0.1, 0.2}, {0.3, 0.4}}, vecs)
}

func TestEmbedder_Encode_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[0.1]}]}`))
	}))
	defer srv.Close()

	e := NewEmbedder(srv.URL, "", "test-model", srv.Client(), 0)

	_, err := e.Encode(context.Background(), []string{"a", "b"})
	assert.ErrorContains(t, err, "expected 2 embeddings")
}

func TestEmbedder_Encode_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	}))
	defer srv.Close()

	e := NewEmbedder(srv.URL, "", "test-model", srv.Client(), 0)

	vecs, err := e.Encode(context.Background(), []string{"a"})
	assert.NoError(t, err)
	assert.Len(t, vecs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedder_Encode_NoRetryOnBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"input too long"}`))
	}))
	defer srv.Close()

	e := NewEmbedder(srv.URL, "", "test-model", srv.Client(), 0)

	_, err := e.Encode(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "api returned 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmbedder_Version(t *testing.T) {
	e := NewEmbedder("http://localhost", "", "text-embedding-3-small", &http.Client{Timeout: time.Second}, 0)
	assert.Equal(t, "text-embedding-3-small", e.Version())
}
