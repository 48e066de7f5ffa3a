package embedcache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"product-query-bot/internal/domain"
)

// Encoder decorates a VectorEncoder with an LRU cache keyed by the exact
// input text. Repeated queries skip the embedding API entirely.
type Encoder struct {
	inner domain.VectorEncoder
	cache *lru.Cache[string, []float32]
}

// New wraps inner with a cache holding up to size embeddings.
func New(inner domain.VectorEncoder, size int) (*Encoder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &Encoder{inner: inner, cache: cache}, nil
}

func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if vec, ok := e.cache.Get(text); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	encoded, err := e.inner.Encode(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(encoded) != len(missing) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missing), len(encoded))
	}

	for j, vec := range encoded {
		e.cache.Add(missing[j], vec)
		out[missingIdx[j]] = vec
	}

	return out, nil
}

func (e *Encoder) Version() string {
	return e.inner.Version()
}

var _ domain.VectorEncoder = (*Encoder)(nil)
