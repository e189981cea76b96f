// Package rest provides the HTTP interface for the ingest and analytics
// pipeline.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/replayed-app/replayed/internal/core/ports"
	"github.com/replayed-app/replayed/internal/core/services"
	"github.com/replayed-app/replayed/internal/worker"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	ingest *services.Ingestor
	stats  *services.Analyzer
	repo   ports.SnapshotRepository
	pool   *worker.Pool
	router *chi.Mux
	logger *slog.Logger
}

// NewHandler initializes the HTTP adapter and sets up routes.
// pool may be nil; the background job endpoints then answer 501.
func NewHandler(ingest *services.Ingestor, stats *services.Analyzer, repo ports.SnapshotRepository, pool *worker.Pool, logger *slog.Logger) *Handler {
	h := &Handler{
		ingest: ingest,
		stats:  stats,
		repo:   repo,
		pool:   pool,
		router: chi.NewRouter(),
		logger: logger,
	}

	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.RealIP)
	h.router.Use(middleware.Logger)
	h.router.Use(middleware.Recoverer)

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.Get("/health", h.HealthCheck)

	h.router.Route("/api", func(r chi.Router) {
		r.Post("/sync", h.Sync)
		r.Post("/tracks", h.SaveTracks)
		r.Get("/analytics/{username}", h.Analytics)
		r.Get("/users", h.ListUsers)

		r.Route("/sync/jobs", func(r chi.Router) {
			r.Post("/", h.SubmitSyncJob)
			r.Get("/{id}", h.SyncJobState)
		})
	})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
