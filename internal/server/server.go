package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/config"
	apperrors "github.com/memeforge/memeforge/internal/errors"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/observability"
	"github.com/memeforge/memeforge/internal/render"
	"github.com/memeforge/memeforge/internal/server/handlers"
	servermw "github.com/memeforge/memeforge/internal/server/middleware"
)

// Deps are the collaborators the HTTP API serves.
type Deps struct {
	Registry *meme.Registry
	Renderer *render.Service
	// Health receives the server's probes. Nil gets a manager with only the
	// registry check.
	Health *handlers.HealthManager
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	deps   Deps
}

// New creates a new HTTP server instance
func New(cfg config.ServerConfig, deps Deps) *Server {
	if deps.Health == nil {
		deps.Health = handlers.NewHealthManager("dev")
	}
	if deps.Registry != nil {
		reg := deps.Registry
		deps.Health.RegisterChecker("registry", handlers.CheckerFunc(func(context.Context) error {
			if reg.Len() == 0 {
				return apperrors.NewInternalError("no templates registered")
			}
			return nil
		}))
	}

	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(servermw.RequestID)      // 1. Request ID (early for correlation)
	r.Use(servermw.RequestMetrics) // 2. Metrics (measure everything)
	r.Use(servermw.Recovery)       // 3. Panic recovery
	r.Use(servermw.BodyLimit(cfg.MaxUploadBytes))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewNotFoundError("The requested resource was not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithError(w, req, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"))
	})

	s := &Server{
		router: r,
		cfg:    cfg,
		deps:   deps,
	}

	s.registerRoutes()

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  orDefault(s.cfg.ReadTimeout, 30*time.Second),
		WriteTimeout: orDefault(s.cfg.WriteTimeout, 60*time.Second),
		IdleTimeout:  orDefault(s.cfg.IdleTimeout, 120*time.Second),
	}

	if logger := observability.Logger(); logger != nil {
		logger.Info("Starting HTTP server",
			zap.String("host", s.cfg.Host),
			zap.Int("port", s.cfg.Port),
			zap.String("addr", addr))
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if logger := observability.Logger(); logger != nil {
		logger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.cfg.Port
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
