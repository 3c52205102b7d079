// Package http serves the prediction API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ayurpredict/config"
)

type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		MaxBodyBytes:   1 << 20,
		AllowedOrigins: []string{"*"},
	}
}

// ServerConfigFrom maps the http section of the service configuration.
func ServerConfigFrom(cfg config.HTTPConfig) ServerConfig {
	sc := DefaultServerConfig()
	sc.Port = cfg.Port
	sc.Timeout = cfg.Timeout
	sc.MaxBodyBytes = cfg.MaxBodyBytes
	if len(cfg.AllowedOrigins) > 0 {
		sc.AllowedOrigins = cfg.AllowedOrigins
	}
	return sc
}

// NewServer registers the API routes and wraps them in the middleware chain.
func NewServer(config ServerConfig, deps Dependencies) *Server {
	logger := deps.logger()
	handler := NewHandler(config, deps)

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       config.Timeout,
			IdleTimeout:       120 * time.Second,
		},
		config: config,
		logger: logger,
	}
}

// NewHandler returns the fully wrapped API handler. Tests serve it directly.
func NewHandler(config ServerConfig, deps Dependencies) http.Handler {
	logger := deps.logger()
	mux := http.NewServeMux()
	RegisterHandlers(mux, deps)

	chain := Chain(
		RecoveryMiddleware(logger),
		LoggerMiddleware(logger),
		MetricsMiddleware(mux),
		SecurityHeadersMiddleware,
		CORSMiddleware(config.AllowedOrigins),
		RequestSizeMiddleware(config.MaxBodyBytes),
		TimeoutMiddleware(config.Timeout),
	)
	return chain(mux)
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server",
		zap.String("addr", s.Addr()),
		zap.String("websocket", "/api/ws/predict"),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests for up to five seconds.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down http server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr is the listen address, e.g. ":8080".
func (s *Server) Addr() string {
	return s.server.Addr
}
