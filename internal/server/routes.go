package server

import (
	"github.com/imagesmith/imagesmith/internal/server/handlers"
	servermw "github.com/imagesmith/imagesmith/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// The generation gateway and the preset catalog are called from browsers
	// on other origins, so both carry CORS headers. The gateway is mounted
	// for every method; it answers its own 405s in the flat wire shape the
	// browser client expects.
	if s.gateway != nil {
		s.router.With(servermw.CORS).Handle("/query", s.gateway)
	}
	s.router.With(servermw.CORS).Get("/presets", handlers.PresetsHandler)

	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)
}
