// Package main is the entry point for the development item backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/itemdesk/internal/config"
	"github.com/vyrodovalexey/itemdesk/internal/logging"
	"github.com/vyrodovalexey/itemdesk/internal/server"
	"github.com/vyrodovalexey/itemdesk/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	logger, err := logging.New(cfg.LogLevel, "stdout")
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("store_driver", cfg.StoreDriver),
	)

	itemStore, err := createStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create store", zap.Error(err))
		return 1
	}
	defer func() {
		if err := itemStore.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	srv := server.New(cfg, logger, itemStore)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// createStore creates the item store selected by the config store driver.
func createStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory, "":
		logger.Info("store: in-memory")
		return store.NewMemoryStore(), nil
	case config.StoreDriverSQLite:
		logger.Info("store: sqlite", zap.String("dsn", cfg.StoreDSN))
		return openSQL(ctx, store.SQLite, cfg.StoreDSN)
	case config.StoreDriverMySQL:
		// The DSN may carry credentials.
		logger.Info("store: mysql")
		return openSQL(ctx, store.MySQL, cfg.StoreDSN)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}

func openSQL(ctx context.Context, dialect store.Dialect, dsn string) (store.Store, error) {
	sqlStore, err := store.OpenSQLStore(ctx, dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", dialect.Driver, err)
	}
	return sqlStore, nil
}
