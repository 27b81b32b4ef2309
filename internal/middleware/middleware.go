// Package middleware instruments the item backend's routes. Every request gets
// a request ID and a logger scoped to its item operation; panics, access logs
// and Prometheus metrics all go through that scope.
package middleware

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader carries the request ID, in both directions.
const RequestIDHeader = "X-Request-ID"

// Operation names. Routes are named after the operation they serve.
const (
	OpList      = "list"
	OpGet       = "get"
	OpCreate    = "create"
	OpDelete    = "delete"
	OpHealth    = "health"
	OpMetrics   = "metrics"
	OpPreflight = "preflight"
	OpUnknown   = "unknown"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	loggerKey
)

var (
	itemRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itemserver_item_requests_total",
			Help: "Item backend requests by operation and response status",
		},
		[]string{"operation", "status"},
	)

	itemRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "itemserver_item_request_duration_seconds",
			Help:    "Item backend request latency by operation",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// statusRecorder remembers the first status written.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.wroteHeader {
		return
	}
	rec.status = code
	rec.wroteHeader = true
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}
	return rec.ResponseWriter.Write(b)
}

// Instrument tags each request with a request ID (the caller's, or a new
// one), stores a request-scoped logger in its context, turns panics into 500s
// and, once the handler returns, writes the access log and metrics for the
// route's operation.
func Instrument(logger *zap.Logger, recordMetrics bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			op := Operation(r)
			reqLogger := logger.With(zap.String("request_id", requestID), zap.String("operation", op))
			if itemID, ok := mux.Vars(r)["id"]; ok {
				reqLogger = reqLogger.With(zap.String("item_id", itemID))
			}

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			ctx = context.WithValue(ctx, loggerKey, reqLogger)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			defer func() {
				if p := recover(); p != nil {
					reqLogger.Error("panic recovered",
						zap.Any("panic", p),
						zap.ByteString("stack", debug.Stack()),
					)
					if !rec.wroteHeader {
						http.Error(rec, "internal server error", http.StatusInternalServerError)
					} else {
						rec.status = http.StatusInternalServerError
					}
				}

				elapsed := time.Since(start)
				if recordMetrics {
					itemRequestsTotal.WithLabelValues(op, strconv.Itoa(rec.status)).Inc()
					itemRequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
				}

				reqLogger.Log(accessLevel(op, rec.status), "request served",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", rec.status),
					zap.Duration("duration", elapsed),
					zap.String("remote_addr", r.RemoteAddr),
				)
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}

// accessLevel keeps health checks, scrapes and preflights out of the info log.
func accessLevel(op string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case op == OpHealth, op == OpMetrics, op == OpPreflight:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// Operation returns the name of the matched route, or OpUnknown.
func Operation(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if name := route.GetName(); name != "" {
			return name
		}
	}
	return OpUnknown
}

// RequestID returns the request ID assigned by Instrument.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Logger returns the request-scoped logger assigned by Instrument, or fallback.
func Logger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return fallback
}

// CORS lets browser renderers on the listed origins call the item API.
// "*" admits any origin without credentials. Allowed methods are set per
// route by mux.CORSMethodMiddleware; preflights stop here with 204.
func CORS(allowedOrigins ...string) mux.MiddlewareFunc {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				switch {
				case origins["*"]:
					w.Header().Set("Access-Control-Allow-Origin", origin)
				case origins[origin]:
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
