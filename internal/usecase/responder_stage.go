package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"product-query-bot/internal/domain"
)

const (
	responderStageName = "responder"

	// Fixed sampling parameters: some variety in phrasing, bounded latency.
	generationTemperature = 0.7
)

// ResponderStage builds a grounded prompt from the retrieved documents and
// invokes the generation service. Failures are contained: the result always
// carries a non-empty, user-safe response string.
type ResponderStage struct {
	prompts   PromptBuilder
	llm       domain.LLMClient
	maxTokens int
	logger    *slog.Logger
}

// NewResponderStage creates the response-generation stage.
func NewResponderStage(prompts PromptBuilder, llm domain.LLMClient, maxTokens int, logger *slog.Logger) *ResponderStage {
	return &ResponderStage{
		prompts:   prompts,
		llm:       llm,
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Run generates an answer grounded in the retrieved documents. It runs even
// with zero documents: the context sentinel instructs the model to produce a
// graceful "no information" answer.
func (s *ResponderStage) Run(ctx context.Context, query string, docs []domain.SearchResult) StageResult[string] {
	prompt, err := s.prompts.Build(PromptInput{
		Query:   query,
		Context: BuildContext(docs),
	})
	if err != nil {
		return s.failure(err)
	}

	answer, err := s.llm.Complete(ctx, SystemPersona, prompt, domain.GenerationOptions{
		Temperature: generationTemperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return s.failure(err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return s.failure(fmt.Errorf("generation service returned an empty response"))
	}

	s.logger.Info("response_generated",
		slog.String("query", query),
		slog.Int("docs_used", len(docs)),
	)
	return StageResult[string]{
		Stage:    responderStageName,
		Status:   StatusSuccess,
		Payload:  answer,
		DocCount: len(docs),
	}
}

func (s *ResponderStage) failure(err error) StageResult[string] {
	s.logger.Error("generation_failed", slog.String("error", err.Error()))
	return StageResult[string]{
		Stage:   responderStageName,
		Status:  StatusError,
		Payload: fmt.Sprintf("Sorry, I couldn't generate a response. Error: %v", err),
		Err:     err.Error(),
	}
}
