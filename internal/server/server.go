// Package server exposes resolved settings as a local HTTP read model.
//
// UI surfaces (webview, editors) read the effective configuration over
// loopback instead of linking the engine in. Every request triggers a fresh
// activation, so a change to the defaults artifact is visible on the next
// read. The server never writes anything and never talks to AI providers.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/codeloom-ai/codeloom/internal/activation"
	"github.com/codeloom-ai/codeloom/internal/approval"
	"github.com/codeloom-ai/codeloom/internal/settings"
)

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         7433,
		EnableCORS:   true,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// Server serves the settings read model.
type Server struct {
	config    *Config
	router    *chi.Mux
	httpSrv   *http.Server
	activator *activation.Activator
	log       zerolog.Logger
}

// New creates a server around an activator.
func New(cfg *Config, activator *activation.Activator, log zerolog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		config:    cfg,
		router:    chi.NewRouter(),
		activator: activator,
		log:       log.With().Str("component", "server").Logger(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/settings", s.handleSettings)
	s.router.Get("/scan", s.handleScan)
	s.router.Get("/approval", s.handleApproval)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins listening. Blocks until the server stops.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("settings server listening")
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSettings serves the resolved settings with every credential value
// blanked. The CORS policy lets any origin read this endpoint, so secret
// material must never appear in the body; a host that needs the raw keys
// runs an activation in-process instead.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	res := s.activator.Run(r.Context())
	out := *res
	out.Settings = settings.Redact(res.Settings)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	res := s.activator.Run(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"runID":   res.RunID,
		"status":  res.Status,
		"flagged": res.Flagged,
	})
}

// handleApproval evaluates the auto-approval policy for ?command=...
func (s *Server) handleApproval(w http.ResponseWriter, r *http.Request) {
	command := r.URL.Query().Get("command")
	if command == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "missing command parameter")
		return
	}

	res := s.activator.Run(r.Context())
	decision := approval.FromSettings(res.Settings).Evaluate(command)
	writeJSON(w, http.StatusOK, decision)
}
