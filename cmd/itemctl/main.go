// Package main is the entry point for the item console.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/itemdesk/internal/config"
	"github.com/vyrodovalexey/itemdesk/internal/console"
	"github.com/vyrodovalexey/itemdesk/internal/controller"
	"github.com/vyrodovalexey/itemdesk/internal/logging"
	"github.com/vyrodovalexey/itemdesk/internal/remote"
	"github.com/vyrodovalexey/itemdesk/internal/view"
)

const metricsShutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	// stdout belongs to the console.
	logger, err := logging.New(cfg.LogLevel, "stderr")
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Debug("configuration loaded",
		zap.String("api_url", cfg.APIURL),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.String("locale", cfg.Locale),
	)

	if cfg.MetricsAddr != "" {
		listener, err := net.Listen("tcp", cfg.MetricsAddr)
		if err != nil {
			logger.Error("failed to listen for metrics", zap.String("address", cfg.MetricsAddr), zap.Error(err))
			return 1
		}
		metricsServer := serveMetrics(listener, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			_ = metricsServer.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctrl := newController(cfg, logger)
	ctrl.Init(ctx)

	done := make(chan error, 1)
	go func() {
		done <- console.Run(ctx, os.Stdin, os.Stdout, ctrl)
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("console stopped", zap.Error(err))
			return 1
		}
	case <-ctx.Done():
		logger.Debug("interrupted")
	}

	return 0
}

// serveMetrics exposes the remote call metrics on listener at /metrics.
func serveMetrics(listener net.Listener, logger *zap.Logger) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Debug("serving metrics", zap.String("address", listener.Addr().String()))

	return srv
}

// newController wires the remote client and projector selected by cfg.
func newController(cfg *config.Config, logger *zap.Logger) *controller.Controller {
	client := remote.NewClient(cfg.APIURL, cfg.RequestTimeout, logger)
	projector := view.NewProjector(cfg.LocaleTag())
	return controller.New(client, projector, logger)
}
