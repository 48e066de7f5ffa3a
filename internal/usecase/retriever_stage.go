package usecase

import (
	"context"
	"log/slog"

	"product-query-bot/internal/domain"
)

const retrieverStageName = "retriever"

// RetrieverStage runs the search step of the pipeline. Any failure from the
// search engine is converted into a structured error result; nothing escapes
// to the caller.
type RetrieverStage struct {
	engine SearchEngine
	logger *slog.Logger
}

// NewRetrieverStage creates the retrieval stage.
func NewRetrieverStage(engine SearchEngine, logger *slog.Logger) *RetrieverStage {
	return &RetrieverStage{engine: engine, logger: logger}
}

// Run searches for documents relevant to the query. Success with zero
// documents is still success; only search-subsystem failures yield an error
// status.
func (s *RetrieverStage) Run(ctx context.Context, query string, topK int) StageResult[[]domain.SearchResult] {
	docs, err := s.engine.Search(ctx, query, topK)
	if err != nil {
		s.logger.Error("retrieval_failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
		return StageResult[[]domain.SearchResult]{
			Stage:   retrieverStageName,
			Status:  StatusError,
			Payload: []domain.SearchResult{},
			Err:     err.Error(),
		}
	}

	return StageResult[[]domain.SearchResult]{
		Stage:    retrieverStageName,
		Status:   StatusSuccess,
		Payload:  docs,
		DocCount: len(docs),
	}
}
