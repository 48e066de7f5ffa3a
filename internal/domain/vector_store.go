package domain

import "context"

// VectorStore holds document vectors plus payload and answers nearest-neighbor
// queries. Implementations embed documents and queries themselves via a
// VectorEncoder; callers never handle raw vectors.
type VectorStore interface {
	// Add embeds and stores the given documents.
	Add(ctx context.Context, docs []Document) error

	// Query returns up to topK matches for the query text, sorted by
	// ascending distance. An empty store yields an empty slice, not an error.
	Query(ctx context.Context, query string, topK int) ([]SearchResult, error)

	// Count reports the number of indexed documents.
	Count(ctx context.Context) (int, error)

	// Reset drops all stored documents so a rebuild starts from scratch.
	Reset(ctx context.Context) error
}
