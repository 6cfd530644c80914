package server

import (
	"context"
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/memeforge/memeforge/internal/appid"
	"github.com/memeforge/memeforge/internal/observability"
	"github.com/memeforge/memeforge/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	hm := s.deps.Health
	s.router.Get("/health", hm.HealthHandler)
	s.router.Get("/health/live", hm.LivenessHandler)
	s.router.Get("/health/ready", hm.ReadinessHandler)
	s.router.Get("/health/startup", hm.StartupHandler)

	templates := 0
	if s.deps.Registry != nil {
		templates = s.deps.Registry.Len()
	}
	s.router.Get("/version", handlers.VersionHandler(templates))
	s.router.Get("/metrics", MetricsHandler)

	if s.deps.Registry != nil && s.deps.Renderer != nil {
		mh := handlers.NewMemeHandlers(s.deps.Registry, s.deps.Renderer)
		s.router.Route("/memes", func(r chi.Router) {
			r.Get("/", mh.List)
			r.Get("/keys", mh.Keys)
			r.Get("/{key}", mh.Get)
			r.Post("/{key}", mh.Render)
			r.Get("/{key}/preview", mh.Preview)
		})
	}

	s.registerAdminEndpoint()
}

// registerAdminEndpoint mounts the signal endpoint when <PREFIX>ADMIN_TOKEN is set.
func (s *Server) registerAdminEndpoint() {
	identity, _ := appid.Get(context.Background())
	envPrefix := appid.EnvPrefix(identity)

	adminToken := os.Getenv(envPrefix + "ADMIN_TOKEN")
	logger := observability.Logger()

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no " + envPrefix + "ADMIN_TOKEN set)")
		}
		return
	}

	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,
		RateBurst: 5,
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("rate_limit", "10/min, burst 5"))
	}
}
