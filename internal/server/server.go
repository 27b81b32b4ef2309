// Package server runs the development item backend over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/itemdesk/internal/config"
	"github.com/vyrodovalexey/itemdesk/internal/handler"
	"github.com/vyrodovalexey/itemdesk/internal/middleware"
	"github.com/vyrodovalexey/itemdesk/internal/store"
)

// Server serves the item routes, plus /metrics when enabled.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *zap.Logger
}

// New wires the item routes over itemStore. Nothing listens until Start or Serve.
func New(cfg *config.Config, logger *zap.Logger, itemStore store.Store) *Server {
	router := mux.NewRouter()

	router.Use(middleware.Instrument(logger, cfg.MetricsEnabled))
	router.Use(mux.CORSMethodMiddleware(router))
	router.Use(middleware.CORS("*"))

	handler.NewRESTHandler(itemStore, logger).RegisterRoutes(router)
	if cfg.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet).Name(middleware.OpMetrics)
	}

	return &Server{
		router: router,
		config: cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.Address(),
			Handler:           router,
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start listens on the configured port and blocks until Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(listener)
}

// Serve blocks until Shutdown, answering connections accepted on listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("item backend listening",
		zap.String("address", listener.Addr().String()),
		zap.String("store_driver", s.config.StoreDriver),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
	)

	err := s.httpServer.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve items: %w", err)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown item backend: %w", err)
	}
	s.logger.Info("item backend stopped")
	return nil
}

// Router exposes the routes without a listener.
func (s *Server) Router() *mux.Router {
	return s.router
}
