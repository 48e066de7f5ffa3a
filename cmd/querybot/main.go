package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"product-query-bot/internal/adapter/corpus"
	"product-query-bot/internal/adapter/embedcache"
	"product-query-bot/internal/adapter/openaiapi"
	"product-query-bot/internal/adapter/vectorstore/chromem"
	"product-query-bot/internal/adapter/vectorstore/pgvector"
	"product-query-bot/internal/domain"
	"product-query-bot/internal/infra"
	"product-query-bot/internal/infra/config"
	"product-query-bot/internal/infra/httpclient"
	"product-query-bot/internal/infra/logger"
	"product-query-bot/internal/usecase"
)

var (
	userID  string
	asJSON  bool
	rootCmd = &cobra.Command{
		Use:           "querybot",
		Short:         "Query the product knowledge base from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question against the indexed product corpus",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Show index size and configured models",
		RunE:  runInfo,
	}
)

func init() {
	askCmd.Flags().StringVar(&userID, "user", "cli", "user id attached to the query")
	askCmd.Flags().BoolVar(&asJSON, "json", false, "print the full pipeline result as JSON")
	rootCmd.AddCommand(askCmd, infoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	pipeline, cleanup, err := buildPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result := pipeline.ProcessQuery(cmd.Context(), args[0], userID)

	if asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(result.FinalResponse)
	if result.Status != usecase.StatusSuccess {
		return fmt.Errorf("pipeline finished with status %s: %s", result.Status, result.Error)
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	pipeline, cleanup, err := buildPipeline(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := pipeline.SystemInfo(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("System:           %s\n", info.System)
	fmt.Printf("Indexed docs:     %d\n", info.IndexedDocs)
	fmt.Printf("Embedding model:  %s\n", info.EmbeddingModel)
	fmt.Printf("Generation model: %s\n", info.GenerationModel)
	return nil
}

// buildPipeline wires an in-process pipeline from the environment, indexing
// the corpus before returning. The same configuration keys drive the server.
func buildPipeline(ctx context.Context) (usecase.Pipeline, func(), error) {
	cfg := config.Load()
	log := logger.New()
	slog.SetDefault(log)

	httpClient := httpclient.NewPooledClient(time.Duration(cfg.RequestTimeoutSecs) * time.Second)
	minGap := time.Duration(cfg.MinRequestGapMS) * time.Millisecond

	rawEncoder := openaiapi.NewEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, httpClient, minGap)
	encoder, err := embedcache.New(rawEncoder, cfg.EmbedCacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	llm := openaiapi.NewChatClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, httpClient, minGap)

	store, cleanup, err := newVectorStore(ctx, cfg, encoder)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	indexer := usecase.NewCorpusIndexer(corpus.NewFSSource(cfg.DocsPath), store, log)
	if _, err := indexer.Build(ctx); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to index corpus from %s: %w", cfg.DocsPath, err)
	}

	engine := usecase.NewSearchEngine(store, log)
	retriever := usecase.NewRetrieverStage(engine, log)
	responder := usecase.NewResponderStage(usecase.NewGroundedPromptBuilder(), llm, cfg.AnswerMaxTokens, log)
	return usecase.NewPipeline(retriever, responder, store, encoder, llm, cfg.TopK, log), cleanup, nil
}

func newVectorStore(ctx context.Context, cfg *config.Config, encoder domain.VectorEncoder) (domain.VectorStore, func(), error) {
	switch cfg.VectorBackend {
	case "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		pool, err := infra.NewPostgresDB(ctx, dsn)
		if err != nil {
			return nil, func() {}, err
		}
		return pgvector.New(pool, encoder, cfg.Collection), pool.Close, nil
	case "chromem":
		db, err := chromem.NewDB(cfg.ChromemPersistDir)
		if err != nil {
			return nil, func() {}, err
		}
		store, err := chromem.New(db, cfg.Collection, encoder)
		if err != nil {
			return nil, func() {}, err
		}
		return store, func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}
