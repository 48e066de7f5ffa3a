package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"product-query-bot/internal/domain"
)

// PipelineState is the mutable record threaded through one pipeline
// invocation. Each query gets a fresh instance; it is never shared across
// concurrent queries and is discarded once the result is produced.
type PipelineState struct {
	Query           string
	UserID          string
	RetrievedDocs   []domain.SearchResult
	FinalResponse   string
	RetrieverStatus Status
	ResponderStatus Status
}

// StageReport records one stage's outcome for observability.
type StageReport struct {
	Status   Status `json:"status"`
	DocCount int    `json:"doc_count"`
}

// PipelineDiagnostics carries per-stage outcomes and the invocation id.
type PipelineDiagnostics struct {
	PipelineID string      `json:"pipeline_id"`
	Retriever  StageReport `json:"retriever"`
	Responder  StageReport `json:"responder"`
}

// PipelineResult is the externally visible outcome of one query. FinalResponse
// is always non-empty; failures surface through Status, never as an error.
type PipelineResult struct {
	Query         string                `json:"query"`
	UserID        string                `json:"user_id"`
	FinalResponse string                `json:"final_response"`
	RetrievedDocs []domain.SearchResult `json:"retrieved_docs"`
	Status        Status                `json:"status"`
	Error         string                `json:"error,omitempty"`
	Diagnostics   PipelineDiagnostics   `json:"diagnostics"`
}

// SystemInfo summarizes the pipeline for diagnostics.
type SystemInfo struct {
	System          string `json:"system"`
	IndexedDocs     int    `json:"indexed_documents"`
	EmbeddingModel  string `json:"embedding_model"`
	GenerationModel string `json:"generation_model"`
}

// Pipeline sequences the retriever and responder stages over a shared state
// object and aggregates their statuses into one result.
type Pipeline interface {
	ProcessQuery(ctx context.Context, query, userID string) *PipelineResult
	SystemInfo(ctx context.Context) (*SystemInfo, error)
}

const systemName = "product-query-pipeline"

type pipeline struct {
	retriever *RetrieverStage
	responder *ResponderStage
	store     domain.VectorStore
	encoder   domain.VectorEncoder
	llm       domain.LLMClient
	topK      int
	logger    *slog.Logger
}

// NewPipeline wires the two stages into a sequential orchestrator.
func NewPipeline(
	retriever *RetrieverStage,
	responder *ResponderStage,
	store domain.VectorStore,
	encoder domain.VectorEncoder,
	llm domain.LLMClient,
	topK int,
	logger *slog.Logger,
) Pipeline {
	return &pipeline{
		retriever: retriever,
		responder: responder,
		store:     store,
		encoder:   encoder,
		llm:       llm,
		topK:      topK,
		logger:    logger,
	}
}

// ProcessQuery runs retrieval then generation. Retrieval failure
// short-circuits the pipeline; retrieval success with zero documents still
// proceeds to generation. The orchestrator is the last line of containment:
// it always returns a structured result, never panics or raises.
func (p *pipeline) ProcessQuery(ctx context.Context, query, userID string) (result *PipelineResult) {
	pipelineID := uuid.NewString()
	log := p.logger.With(
		slog.String("pipeline_id", pipelineID),
		slog.String("user_id", userID),
	)

	state := &PipelineState{
		Query:         query,
		UserID:        userID,
		RetrievedDocs: []domain.SearchResult{},
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline_panic", slog.Any("panic", r))
			result = &PipelineResult{
				Query:         query,
				UserID:        userID,
				FinalResponse: fmt.Sprintf("System error: %v", r),
				RetrievedDocs: []domain.SearchResult{},
				Status:        StatusSystemError,
				Error:         fmt.Sprint(r),
				Diagnostics: PipelineDiagnostics{
					PipelineID: pipelineID,
					Retriever:  StageReport{Status: state.RetrieverStatus},
					Responder:  StageReport{Status: state.ResponderStatus},
				},
			}
		}
	}()

	log.Info("pipeline_started", slog.String("query", query))

	retrieval := p.retriever.Run(ctx, query, p.topK)
	state.RetrievedDocs = retrieval.Payload
	state.RetrieverStatus = retrieval.Status

	if retrieval.Status == StatusError {
		state.ResponderStatus = StatusSkipped
		state.FinalResponse = "Sorry, the document search is currently unavailable, so I can't answer your question right now."
		return &PipelineResult{
			Query:         query,
			UserID:        userID,
			FinalResponse: state.FinalResponse,
			RetrievedDocs: state.RetrievedDocs,
			Status:        StatusError,
			Error:         retrieval.Err,
			Diagnostics: PipelineDiagnostics{
				PipelineID: pipelineID,
				Retriever:  StageReport{Status: retrieval.Status},
				Responder:  StageReport{Status: StatusSkipped},
			},
		}
	}

	response := p.responder.Run(ctx, query, state.RetrievedDocs)
	state.FinalResponse = response.Payload
	state.ResponderStatus = response.Status

	log.Info("pipeline_completed",
		slog.String("status", string(response.Status)),
		slog.Int("docs_found", retrieval.DocCount),
		slog.Int("docs_used", response.DocCount),
	)

	return &PipelineResult{
		Query:         query,
		UserID:        userID,
		FinalResponse: state.FinalResponse,
		RetrievedDocs: state.RetrievedDocs,
		Status:        response.Status,
		Error:         response.Err,
		Diagnostics: PipelineDiagnostics{
			PipelineID: pipelineID,
			Retriever:  StageReport{Status: retrieval.Status, DocCount: retrieval.DocCount},
			Responder:  StageReport{Status: response.Status, DocCount: response.DocCount},
		},
	}
}

// SystemInfo reports index size and the model identifiers in use.
func (p *pipeline) SystemInfo(ctx context.Context) (*SystemInfo, error) {
	count, err := p.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count indexed documents: %w", err)
	}
	return &SystemInfo{
		System:          systemName,
		IndexedDocs:     count,
		EmbeddingModel:  p.encoder.Version(),
		GenerationModel: p.llm.Version(),
	}, nil
}
