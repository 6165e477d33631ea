package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	apperrors "github.com/imagesmith/imagesmith/internal/errors"
	"github.com/imagesmith/imagesmith/internal/observability"
	"github.com/imagesmith/imagesmith/internal/server/handlers"
	servermw "github.com/imagesmith/imagesmith/internal/server/middleware"
)

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	gateway *handlers.QueryGateway
	host    string
	port    int
}

// New creates a new HTTP server instance. The gateway serves /query; all
// other routes are registered by registerRoutes.
func New(host string, port int, gateway *handlers.QueryGateway) *Server {
	r := chi.NewRouter()

	// Standard chi middleware
	r.Use(middleware.RealIP)

	// Our custom middleware in correct order (RequestID → Metrics → Recovery)
	r.Use(servermw.RequestID)
	r.Use(servermw.RequestMetrics)
	r.Use(servermw.Recovery)

	// Standardized error responses using centralized HandleError
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		err := apperrors.NewNotFoundError("The requested resource was not found")
		HandleError(w, req, err)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		err := apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource")
		HandleError(w, req, err)
	})

	s := &Server{
		router:  r,
		gateway: gateway,
		host:    host,
		port:    port,
	}

	// Ensure handlers use the centralized error responder
	handlers.SetHTTPErrorResponder(HandleError)

	// Register routes
	s.registerRoutes()

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	// The write timeout must outlast the provider call timeout or long
	// generations are cut off mid-response.
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  durationSetting("server.read_timeout", 30*time.Second),
		WriteTimeout: durationSetting("server.write_timeout", 150*time.Second),
		IdleTimeout:  durationSetting("server.idle_timeout", 120*time.Second),
	}

	observability.ServerLogger.Info("Starting HTTP server",
		zap.String("host", s.host),
		zap.Int("port", s.port),
		zap.String("addr", addr))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	observability.ServerLogger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.port
}

func durationSetting(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}
