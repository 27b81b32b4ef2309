//go:build functional

// Package functional provides functional tests for the item backend and the
// client stack that talks to it.
package functional

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/itemdesk/internal/config"
	"github.com/vyrodovalexey/itemdesk/internal/controller"
	"github.com/vyrodovalexey/itemdesk/internal/remote"
	"github.com/vyrodovalexey/itemdesk/internal/server"
	"github.com/vyrodovalexey/itemdesk/internal/store"
	"github.com/vyrodovalexey/itemdesk/internal/view"
)

// Environment variable names for test configuration.
const (
	EnvTestServerHost    = "TEST_SERVER_HOST"
	EnvTestTimeout       = "TEST_TIMEOUT"
	EnvTestMetricsEnable = "TEST_METRICS_ENABLED"
)

// Default test configuration values.
const (
	DefaultTestHost        = "127.0.0.1"
	DefaultTestTimeout     = 30 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultMetricsEnabled  = false
)

// TestConfig holds test configuration loaded from environment.
type TestConfig struct {
	Host           string
	Timeout        time.Duration
	MetricsEnabled bool
}

// LoadTestConfig loads test configuration from environment variables.
func LoadTestConfig() *TestConfig {
	cfg := &TestConfig{
		Host:           DefaultTestHost,
		Timeout:        DefaultTestTimeout,
		MetricsEnabled: DefaultMetricsEnabled,
	}

	if host := os.Getenv(EnvTestServerHost); host != "" {
		cfg.Host = host
	}

	if timeoutStr := os.Getenv(EnvTestTimeout); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			cfg.Timeout = timeout
		}
	}

	if metricsStr := os.Getenv(EnvTestMetricsEnable); metricsStr != "" {
		if enabled, err := strconv.ParseBool(metricsStr); err == nil {
			cfg.MetricsEnabled = enabled
		}
	}

	return cfg
}

// TestServer runs the item backend on a real TCP listener.
type TestServer struct {
	Server  *server.Server
	Store   store.Store
	BaseURL string
	testCfg *TestConfig
}

// StartTestServer starts a backend over itemStore and stops it when the test ends.
func StartTestServer(t *testing.T, itemStore store.Store) *TestServer {
	t.Helper()

	testCfg := LoadTestConfig()

	listener, err := net.Listen("tcp", net.JoinHostPort(testCfg.Host, "0"))
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	cfg := &config.Config{
		ServerPort:      port,
		LogLevel:        "error",
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  testCfg.MetricsEnabled,
		StoreDriver:     config.StoreDriverMemory,
	}

	ts := &TestServer{
		Server:  server.New(cfg, zap.NewNop(), itemStore),
		Store:   itemStore,
		BaseURL: fmt.Sprintf("http://%s", listener.Addr().String()),
		testCfg: testCfg,
	}

	go func() {
		if err := ts.Server.Serve(listener); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	ts.waitForReady(t)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := ts.Server.Shutdown(ctx); err != nil {
			t.Logf("Server shutdown error: %v", err)
		}
		_ = itemStore.Close()
	})

	return ts
}

// waitForReady waits for the server to answer its health check.
func (ts *TestServer) waitForReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ts.testCfg.Timeout)
	defer cancel()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Server did not become ready within timeout")
		case <-ticker.C:
			resp, err := http.Get(ts.BaseURL + "/health")
			if err == nil {
				_ = resp.Body.Close()
				if resp.StatusCode == http.StatusOK {
					return
				}
			}
		}
	}
}

// NewClient returns a remote client pointed at the test server.
func (ts *TestServer) NewClient() *remote.Client {
	return remote.NewClient(ts.BaseURL, DefaultRequestTimeout, zap.NewNop())
}

// NewController returns an initialized controller backed by the test server.
func (ts *TestServer) NewController(t *testing.T) *controller.Controller {
	t.Helper()

	ctrl := controller.New(ts.NewClient(), view.NewProjector(view.DefaultLocale), zap.NewNop())
	ctrl.Init(context.Background())
	return ctrl
}
