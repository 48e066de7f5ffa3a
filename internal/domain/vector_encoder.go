package domain

import (
	"context"
)

// VectorEncoder defines the interface for generating embeddings. Every vector
// produced by one encoder instance has the same dimensionality.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}
