// Package http wires the API handlers into a chi router.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"realty-assistant/internal/handlers"
	"realty-assistant/internal/metrics"
	"realty-assistant/internal/rag"
	"realty-assistant/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine     rag.Engine
	Documents  storage.DocumentStore
	Chunks     storage.ChunkStore
	Library    handlers.Library
	Index      handlers.Index
	DirLoader  handlers.DirLoader
	Analyzer   handlers.Analyzer
	Researcher handlers.Researcher
	Metrics    *metrics.Metrics

	HealthChecks []handlers.HealthCheck
	DocumentsDir string
	MaxFileBytes int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	if deps.Metrics != nil {
		r.Use(Metrics(deps.Metrics))
	}
	r.Use(CORS)

	documentHandler := handlers.NewDocumentHandler(deps.Library, deps.Documents, deps.Chunks, deps.MaxFileBytes)
	askHandler := handlers.NewAskHandler(deps.Engine)
	summaryHandler := handlers.NewSummaryHandler(deps.Engine)
	conversationHandler := handlers.NewConversationHandler(deps.Engine)
	analyzeHandler := handlers.NewAnalyzeHandler(deps.Documents, deps.Analyzer, deps.Researcher)
	libraryHandler := handlers.NewLibraryHandler(deps.Index)

	r.Method(http.MethodGet, "/api/health", handlers.NewHealthHandler(deps.HealthChecks...))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentHandler.Upload)
			r.Get("/", documentHandler.List)
			r.Post("/analyze", analyzeHandler.AnalyzeBatch)
			r.Method(http.MethodPost, "/scan", handlers.NewScanHandler(deps.DirLoader, deps.DocumentsDir))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", documentHandler.Get)
				r.Delete("/", documentHandler.Delete)
				r.Get("/summary", summaryHandler.Summary)
				r.Get("/suggestions", summaryHandler.Suggestions)
				r.Method(http.MethodPost, "/ask", askHandler)
				r.Post("/analyze", analyzeHandler.Analyze)
				r.Post("/research", analyzeHandler.Research)
			})
		})

		r.Get("/conversations/{id}", conversationHandler.Get)
		r.Delete("/conversations/{id}", conversationHandler.Clear)

		r.Method(http.MethodPost, "/property/research", handlers.NewPropertyHandler(deps.Researcher))
		r.Get("/search", libraryHandler.Search)
		r.Get("/stats", libraryHandler.Stats)
	})

	return r
}
