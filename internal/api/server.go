package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quillmark/quillmark/internal/config"
	"github.com/quillmark/quillmark/internal/marker"
	"github.com/quillmark/quillmark/internal/pipeline"
	"github.com/quillmark/quillmark/internal/render"
)

// Server is the HTTP API server for quillmark.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	scanner      *marker.Scanner
	renderer     *render.Renderer
	stats        *render.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, sc *marker.Scanner, rd *render.Renderer, stats *render.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		scanner:      sc,
		renderer:     rd,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/annotate", s.handleAnnotate)
		r.Get("/api/annotate/{jobID}/status", s.handleAnnotateStatus)
		r.Post("/api/annotate/batch", s.handleBatchAnnotate)
		r.Post("/api/render", s.handleRender)
		r.Get("/api/stats/render", s.handleRenderStats)

		r.Get("/api/documents", s.handleListDocuments)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
