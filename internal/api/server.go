package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgallion1/bookc/internal/config"
	"github.com/dgallion1/bookc/internal/pipeline"
)

// Server is the HTTP API server for bookc.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	gatherer     prometheus.Gatherer
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. A nil gatherer
// disables /metrics.
func NewServer(orch *pipeline.Orchestrator, gatherer prometheus.Gatherer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		gatherer:     gatherer,
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
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/compile", s.handleCompile)
		r.Get("/api/compile/{jobID}/status", s.handleCompileStatus)
		r.Get("/api/compile/{jobID}/output/{builder}/{chapter}", s.handleCompileOutput)
		r.Get("/api/stats/compile", s.handleCompileStats)
		r.Get("/api/acceptables", s.handleAcceptables)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
