package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/compgen/internal/config"
	"github.com/dgallion1/compgen/internal/llm"
	"github.com/dgallion1/compgen/internal/parser"
	"github.com/dgallion1/compgen/internal/pipeline"
)

// Server is the HTTP API server for compgen.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	store  *pipeline.Store
	parser *parser.Parser
	stats  *llm.LLMStats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(runner *pipeline.Runner, store *pipeline.Store, p *parser.Parser, stats *llm.LLMStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		runner: runner,
		store:  store,
		parser: p,
		stats:  stats,
		log:    log,
		cfg:    cfg,
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
	r.Use(CORS)

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/components", s.handleComponentsInfo)
		r.Post("/components", s.handleGenerate)
		r.Get("/generations/{id}", s.handleGeneration)
		r.Get("/generations/{id}/download", s.handleGenerationDownload)

		r.Post("/parse", s.handleParse)
		r.Post("/preview", s.handlePreview)
		r.Post("/download", s.handleDownload)

		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// decodeJSON reads a size-limited JSON body into v, writing a 400 on
// failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
