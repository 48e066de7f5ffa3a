package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"product-query-bot/internal/adapter/bothttp"
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

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.NewWithOTel(cfg.OTelEnabled)
	slog.SetDefault(log)

	// 3. Initialize Telemetry
	if cfg.OTelEnabled {
		shutdown, err := infra.SetupTelemetry(context.Background(), "product-query-bot", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("failed to set up telemetry", "error", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				log.Error("telemetry shutdown failed", "error", err)
			}
		}()
	}

	// 4. Initialize Embedding and Generation Clients
	httpClient := httpclient.NewPooledClient(time.Duration(cfg.RequestTimeoutSecs) * time.Second)
	minGap := time.Duration(cfg.MinRequestGapMS) * time.Millisecond

	rawEncoder := openaiapi.NewEmbedder(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, httpClient, minGap)
	encoder, err := embedcache.New(rawEncoder, cfg.EmbedCacheSize)
	if err != nil {
		log.Error("failed to create embedding cache", "error", err)
		os.Exit(1)
	}
	llm := openaiapi.NewChatClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.ChatModel, httpClient, minGap)

	// 5. Initialize Vector Store
	store, cleanup, err := newVectorStore(context.Background(), cfg, encoder)
	if err != nil {
		log.Error("failed to initialize vector store", "backend", cfg.VectorBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// 6. Index the Corpus
	source := corpus.NewFSSource(cfg.DocsPath)
	indexer := usecase.NewCorpusIndexer(source, store, log)
	count, err := indexer.Build(context.Background())
	if err != nil {
		log.Error("failed to index corpus", "docs_path", cfg.DocsPath, "error", err)
		os.Exit(1)
	}
	log.Info("corpus ready", "document_count", count)

	// 7. Initialize Pipeline
	engine := usecase.NewSearchEngine(store, log)
	retriever := usecase.NewRetrieverStage(engine, log)
	responder := usecase.NewResponderStage(usecase.NewGroundedPromptBuilder(), llm, cfg.AnswerMaxTokens, log)
	pipeline := usecase.NewPipeline(retriever, responder, store, encoder, llm, cfg.TopK, log)

	// 8. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	// 9. Register Handlers
	handler := bothttp.NewHandler(pipeline)
	handler.Register(e)

	// 10. Health Checks
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if _, err := store.Count(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "store down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	// 11. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("Starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 12. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}

// newVectorStore builds the configured backend. The cleanup func releases any
// held connections and is safe to call unconditionally.
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
