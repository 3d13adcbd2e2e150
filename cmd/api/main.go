package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"realty-assistant/internal/answer"
	"realty-assistant/internal/config"
	"realty-assistant/internal/document"
	"realty-assistant/internal/extraction"
	"realty-assistant/internal/handlers"
	"realty-assistant/internal/http"
	"realty-assistant/internal/ingest"
	"realty-assistant/internal/llm"
	"realty-assistant/internal/metrics"
	"realty-assistant/internal/property"
	"realty-assistant/internal/rag"
	"realty-assistant/internal/storage"
	"realty-assistant/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers questions about uploaded real-estate documents, extracts
// their key fields and researches the properties they describe.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Realty Assistant API
//   description: |
//     Document Q&A over settlement statements, purchase agreements and other
//     real-estate paperwork, with field extraction and property research.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)
	conversationRepo := storage.NewConversationRepo(db)

	m := metrics.New()
	llmOpts := []llm.Option{
		llm.WithTimeout(cfg.LLMTimeout),
		llm.WithRateLimit(cfg.LLMRequestsPerSecond),
		llm.WithObserver(m.ObserveModelCall),
	}
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, llmOpts...)

	registry := document.NewRegistry(document.Limits{
		MaxBytes: cfg.MaxFileSizeBytes(),
		MaxPages: cfg.MaxPages,
	})
	pipeline, err := ingest.NewPipeline(registry, documentRepo, chunkRepo, cfg.Retrieval)
	if err != nil {
		log.Fatalf("Failed to create ingestion pipeline: %v", err)
	}
	pipeline.WithMetrics(m)

	healthChecks := []handlers.HealthCheck{
		{Name: "database", Critical: true, Check: db.PingContext},
		{Name: "llm", Check: llmClient.Ping},
	}

	if cfg.SemanticSearchEnabled() {
		vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		defer func() {
			_ = vectorStore.Close()
		}()

		if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

		embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize, llmOpts...)
		pipeline.WithSemanticIndex(embedder, vectorStore, cfg.QdrantCollection)
		healthChecks = append(healthChecks, handlers.HealthCheck{Name: "vector_store", Check: vectorStore.Health})
	} else {
		slog.Info("Semantic library search disabled", "reason", "QDRANT_URL or EMBEDDING_BASE_URL not set")
	}

	engine := rag.NewEngine(
		documentRepo,
		chunkRepo,
		conversationRepo,
		answer.NewGenerator(llmClient),
		rag.Config{TopK: cfg.Retrieval.TopK, HistoryLimit: cfg.HistoryLimit},
		m,
	)
	slog.Info("Q&A engine initialized", "top_k", cfg.Retrieval.TopK, "history_limit", cfg.HistoryLimit)

	schema, err := extraction.DefaultSchema()
	if err != nil {
		log.Fatalf("Failed to load extraction schema: %v", err)
	}
	extractor := extraction.NewExtractor(llmClient, schema)
	researcher := property.NewResearcher(property.NewSimulatedProvider(), llmClient)

	router := http.NewRouter(&http.Deps{
		Engine:       engine,
		Documents:    documentRepo,
		Chunks:       chunkRepo,
		Library:      pipeline,
		Index:        pipeline,
		DirLoader:    pipeline,
		Analyzer:     extractor,
		Researcher:   researcher,
		Metrics:      m,
		HealthChecks: healthChecks,
		DocumentsDir: cfg.DocumentsDir,
		MaxFileBytes: cfg.MaxFileSizeBytes(),
	})

	// Load the documents inbox in background after router is ready
	if cfg.DocumentsDir != "" {
		go func() {
			slog.Info("Loading documents directory", "dir", cfg.DocumentsDir)
			report, err := pipeline.LoadDir(ctx, cfg.DocumentsDir)
			if err != nil {
				slog.Error("Loading documents directory failed", "error", err)
				return
			}
			slog.Info("Documents directory loaded",
				"loaded", report.Loaded,
				"duplicates", report.Duplicates,
				"failed", report.Failed,
			)
		}()
	}

	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("API server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", server.Addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed: %v", err)
	}
	<-shutdownDone
	slog.Info("API server stopped")
}
