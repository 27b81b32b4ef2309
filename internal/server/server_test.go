package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/itemdesk/internal/config"
	"github.com/vyrodovalexey/itemdesk/internal/handler"
	"github.com/vyrodovalexey/itemdesk/internal/model"
	"github.com/vyrodovalexey/itemdesk/internal/store"
)

func testConfig(port int, metrics bool) *config.Config {
	return &config.Config{
		ServerPort:      port,
		LogLevel:        "info",
		ShutdownTimeout: 30 * time.Second,
		MetricsEnabled:  metrics,
		StoreDriver:     config.StoreDriverMemory,
	}
}

func newTestServer(metrics bool) *Server {
	return New(testConfig(3001, metrics), zap.NewNop(), store.NewMemoryStore())
}

func TestNew(t *testing.T) {
	// Act
	server := newTestServer(true)

	// Assert
	if server == nil {
		t.Fatal("New() returned nil")
	}
	if server.router == nil {
		t.Error("router should not be nil")
	}
	if server.config == nil {
		t.Error("config should not be nil")
	}
	if server.logger == nil {
		t.Error("logger should not be nil")
	}
	if server.httpServer == nil {
		t.Error("httpServer should not be nil")
	}
}

func TestNew_MetricsEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantStatus int
	}{
		{name: "enabled", enabled: true, wantStatus: http.StatusOK},
		{name: "disabled", enabled: false, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			server := newTestServer(tt.enabled)
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rr := httptest.NewRecorder()

			// Act
			server.router.ServeHTTP(rr, req)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("/metrics status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_Router(t *testing.T) {
	// Arrange
	server := newTestServer(false)

	// Act
	router := server.Router()

	// Assert
	if router == nil || router != server.router {
		t.Error("Router() should return the server's router")
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	// Arrange
	server := newTestServer(false)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	// Act
	server.router.ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}

	var response handler.HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Status != "healthy" {
		t.Errorf("status = %s, want healthy", response.Status)
	}
}

func TestServer_ItemLifecycle(t *testing.T) {
	// Arrange
	server := newTestServer(true)
	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		server.router.ServeHTTP(rr, req)
		return rr
	}

	// Act
	created := serve(http.MethodPost, "/items", `{"name":"Apple","category":"Category A","description":"red"}`)
	listed := serve(http.MethodGet, "/items", "")
	deleted := serve(http.MethodDelete, "/items/1", "")
	missing := serve(http.MethodGet, "/items/1", "")

	// Assert
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", created.Code, http.StatusCreated)
	}
	var item model.Item
	if err := json.NewDecoder(created.Body).Decode(&item); err != nil {
		t.Fatalf("failed to decode created item: %v", err)
	}
	if item.ID != "1" || item.Name != "Apple" {
		t.Errorf("created = %+v", item)
	}

	var items []model.Item
	if err := json.NewDecoder(listed.Body).Decode(&items); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("list returned %d items, want 1", len(items))
	}

	if deleted.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", deleted.Code, http.StatusNoContent)
	}
	if missing.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want %d", missing.Code, http.StatusNotFound)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	// Arrange
	server := newTestServer(false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	rr := httptest.NewRecorder()

	// Act
	server.router.ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestServer_MiddlewareApplied(t *testing.T) {
	// Arrange
	server := newTestServer(true)
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()

	// Act
	server.router.ServeHTTP(rr, req)

	// Assert
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set by middleware")
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
	}
}

func TestServer_RequestIDEchoed(t *testing.T) {
	// Arrange
	server := newTestServer(false)
	req := httptest.NewRequest(http.MethodGet, "/items/9", nil)
	req.Header.Set("X-Request-ID", "client-req-7")
	rr := httptest.NewRecorder()

	// Act
	server.router.ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	if got := rr.Header().Get("X-Request-ID"); got != "client-req-7" {
		t.Errorf("X-Request-ID = %q, want client-req-7", got)
	}
}

func TestServer_MetricsLabelledByOperation(t *testing.T) {
	// Arrange
	server := newTestServer(true)
	server.router.ServeHTTP(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{"name":"Pear","category":"Category B","description":"green"}`)))
	server.router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/items/1", nil))
	rr := httptest.NewRecorder()

	// Act
	server.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	body := rr.Body.String()
	for _, series := range []string{
		`itemserver_item_requests_total{operation="create",status="201"}`,
		`itemserver_item_requests_total{operation="delete",status="204"}`,
		`itemserver_item_request_duration_seconds_count{operation="delete"}`,
	} {
		if !strings.Contains(body, series) {
			t.Errorf("/metrics missing %s", series)
		}
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantMethods string
	}{
		{name: "collection", path: "/items", wantMethods: "GET,POST,OPTIONS"},
		{name: "single item", path: "/items/3", wantMethods: "GET,DELETE,OPTIONS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			server := newTestServer(false)
			req := httptest.NewRequest(http.MethodOptions, tt.path, nil)
			req.Header.Set("Origin", "http://localhost:3000")
			req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
			rr := httptest.NewRecorder()

			// Act
			server.router.ServeHTTP(rr, req)

			// Assert
			if rr.Code != http.StatusNoContent {
				t.Errorf("preflight status = %d, want %d", rr.Code, http.StatusNoContent)
			}
			if got := rr.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Errorf("Access-Control-Allow-Methods = %q, want %q", got, tt.wantMethods)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
				t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
			}
		})
	}
}

func TestServer_HTTPServerConfiguration(t *testing.T) {
	// Act
	server := New(testConfig(8080, false), zap.NewNop(), store.NewMemoryStore())

	// Assert
	if server.httpServer.Addr != ":8080" {
		t.Errorf("httpServer.Addr = %s, want :8080", server.httpServer.Addr)
	}
	if server.httpServer.ReadTimeout != 15*time.Second {
		t.Errorf("httpServer.ReadTimeout = %v, want 15s", server.httpServer.ReadTimeout)
	}
	if server.httpServer.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("httpServer.ReadHeaderTimeout = %v, want 5s", server.httpServer.ReadHeaderTimeout)
	}
	if server.httpServer.WriteTimeout != 15*time.Second {
		t.Errorf("httpServer.WriteTimeout = %v, want 15s", server.httpServer.WriteTimeout)
	}
	if server.httpServer.IdleTimeout != 60*time.Second {
		t.Errorf("httpServer.IdleTimeout = %v, want 60s", server.httpServer.IdleTimeout)
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	// Arrange
	server := newTestServer(false)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- server.Serve(listener)
	}()

	url := "http://" + listener.Addr().String() + "/health"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server did not answer: %v", err)
	}
	_ = resp.Body.Close()

	// Act
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(ctx)

	// Assert
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	select {
	case serveErr := <-done:
		if serveErr != nil {
			t.Errorf("Serve() error = %v", serveErr)
		}
	case <-time.After(5 * time.Second):
		t.Error("Serve() did not return after shutdown")
	}
}

func TestServer_DifferentPorts(t *testing.T) {
	tests := []struct {
		name string
		port int
		want string
	}{
		{"default port", 3001, ":3001"},
		{"custom port", 8080, ":8080"},
		{"high port", 65535, ":65535"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			server := New(testConfig(tt.port, false), zap.NewNop(), store.NewMemoryStore())

			// Assert
			if server.httpServer.Addr != tt.want {
				t.Errorf("httpServer.Addr = %s, want %s", server.httpServer.Addr, tt.want)
			}
		})
	}
}
