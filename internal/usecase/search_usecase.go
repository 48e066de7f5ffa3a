package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"product-query-bot/internal/domain"
)

// SearchEngine answers nearest-neighbor queries against the vector store with
// top-k bounding and result normalization.
type SearchEngine interface {
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}

type searchEngine struct {
	store  domain.VectorStore
	logger *slog.Logger
}

// NewSearchEngine creates a SearchEngine over the given store.
func NewSearchEngine(store domain.VectorStore, logger *slog.Logger) SearchEngine {
	return &searchEngine{store: store, logger: logger}
}

// Search returns up to topK results sorted by non-decreasing distance. An
// empty store yields an empty slice; topK larger than the indexed count
// returns every document without padding. The query text is passed to the
// backend unmodified, including the empty string.
func (e *searchEngine) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}

	results, err := e.store.Query(ctx, query, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	normalize(results)

	e.logger.Info("search_completed",
		slog.String("query", query),
		slog.Int("result_count", len(results)),
	)
	return results, nil
}

// normalize clamps stray negative distances and restores ascending order if
// the backend violated it. Equal distances keep the backend's native order.
func normalize(results []domain.SearchResult) {
	sorted := true
	for i := range results {
		if results[i].Distance < 0 {
			results[i].Distance = 0
		}
		if i > 0 && results[i].Distance < results[i-1].Distance {
			sorted = false
		}
	}
	if !sorted {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Distance < results[j].Distance
		})
	}
}
