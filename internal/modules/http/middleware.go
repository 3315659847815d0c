// Package http provides the SteamConv HTTP API module.
// This file contains HTTP middleware implementations.
package http

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corrreia/steamconv/internal/shared"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// corsMiddleware handles CORS headers
type corsMiddleware struct {
	handler http.Handler
	origins string
}

func (m *corsMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", m.origins)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
	w.Header().Set("Access-Control-Max-Age", "86400")

	// Handle preflight
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	m.handler.ServeHTTP(w, r)
}

// loggingMiddleware assigns a request id and logs each request
type loggingMiddleware struct {
	handler http.Handler
}

func (m *loggingMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)

	// Wrap response writer to capture status code
	wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	m.handler.ServeHTTP(wrapped, r)

	shared.Zap().Named("HTTP").Info("request",
		zap.String("id", id),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", wrapped.statusCode),
		zap.Duration("duration", time.Since(start)),
	)
}

// recoveryMiddleware turns handler panics into 500 responses
type recoveryMiddleware struct {
	handler http.Handler
}

func (m *recoveryMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			shared.LogError("HTTP", "panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
			ErrorResponse(w, http.StatusInternalServerError, "internal error")
		}
	}()
	m.handler.ServeHTTP(w, r)
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			shared.LogWarning("HTTP", "Failed to encode response: %v", err)
		}
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	JSONResponse(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
