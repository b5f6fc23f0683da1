package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/hx-natthawat/poc-ai-incident-document-generator/pkg/response"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server wires routing and middleware around the report API
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	logger     *logrus.Logger
}

// NewServer creates the HTTP server with the full middleware chain applied
func NewServer(
	cfg ServerConfig,
	reportHandler *ReportHandler,
	auth *APIKeyMiddleware,
	rateLimit *RateLimitMiddleware,
	logger *logrus.Logger,
) *Server {
	router := mux.NewRouter()

	router.Use(correlationMiddleware)
	router.Use(loggingMiddleware(logger))
	router.Use(recoveryMiddleware(logger))
	router.Use(corsMiddleware)
	router.Use(auth.Handler)
	router.Use(rateLimit.Handler)

	router.HandleFunc("/health", healthHandler).Methods("GET")
	reportHandler.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		router: router,
		logger: logger,
	}
}

// Router exposes the underlying router, mainly for tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start begins listening; it blocks until the server stops
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "OK", map[string]string{
		"status": "healthy",
	})
}
