package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"product-query-bot/internal/domain"
)

// CorpusIndexer owns ingestion from the corpus source into the vector store.
type CorpusIndexer interface {
	// Build performs a destructive full rebuild and returns the indexed
	// document count. An empty corpus fails with domain.ErrEmptyCorpus.
	Build(ctx context.Context) (int, error)
}

type corpusIndexer struct {
	source domain.CorpusSource
	store  domain.VectorStore
	logger *slog.Logger
}

// NewCorpusIndexer creates a CorpusIndexer reading from source into store.
func NewCorpusIndexer(source domain.CorpusSource, store domain.VectorStore, logger *slog.Logger) CorpusIndexer {
	return &corpusIndexer{source: source, store: store, logger: logger}
}

func (i *corpusIndexer) Build(ctx context.Context) (int, error) {
	items, err := i.source.Items(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load corpus: %w", err)
	}
	if len(items) == 0 {
		return 0, domain.ErrEmptyCorpus
	}

	docs := make([]domain.Document, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		id := strings.TrimSuffix(item.Name, filepath.Ext(item.Name))
		if seen[id] {
			return 0, fmt.Errorf("duplicate document id %q derived from %q", id, item.Name)
		}
		seen[id] = true

		docs = append(docs, domain.Document{
			ID:      id,
			Content: item.Content,
			Metadata: domain.DocumentMetadata{
				Filename: item.Name,
				Source:   item.Source,
				DocID:    id,
			},
		})
	}

	// Replace any previous generation before adding, so repeated builds from
	// the same source produce the same count and id set.
	if err := i.store.Reset(ctx); err != nil {
		return 0, fmt.Errorf("failed to reset store: %w", err)
	}
	if err := i.store.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to index documents: %w", err)
	}

	i.logger.Info("corpus_indexed", slog.Int("document_count", len(docs)))
	return len(docs), nil
}
