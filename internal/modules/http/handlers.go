// Package http provides the SteamConv HTTP API module.
// This file contains the built-in API routes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corrreia/steamconv/internal/converter"
	"github.com/corrreia/steamconv/internal/modules"
	"github.com/corrreia/steamconv/pkg/steamid"
)

// maxBatchBody caps the size of a batch request body.
const maxBatchBody = 1 << 20

// BatchRequest is the body of POST /api/convert
type BatchRequest struct {
	IDs []string `json:"ids"`
}

// BatchResponse is the reply to POST /api/convert
type BatchResponse struct {
	Count   int                 `json:"count"`
	Results []*converter.Result `json:"results"`
}

// registerBuiltinRoutes registers the built-in API routes
func (m *Module) registerBuiltinRoutes() {
	m.router.GET("/health", func(w http.ResponseWriter, r *http.Request) {
		JSONResponse(w, http.StatusOK, map[string]interface{}{
			"status":         "ok",
			"time":           time.Now().Unix(),
			"offline":        !m.converter.Online(),
			"modules_loaded": modules.GetLoadedCount(),
		})
	})

	api := m.router.Group("/api")
	api.GET("/convert", m.handleConvert)
	api.POST("/convert", m.handleConvertBatch)
	api.GET("/detect", m.handleDetect)

	api.GET("/modules", func(w http.ResponseWriter, r *http.Request) {
		moduleList := modules.GetAll()
		JSONResponse(w, http.StatusOK, map[string]interface{}{
			"count":   len(moduleList),
			"modules": moduleList,
		})
	})

	api.GET("/routes", func(w http.ResponseWriter, r *http.Request) {
		routes := m.router.GetRoutes()
		JSONResponse(w, http.StatusOK, map[string]interface{}{
			"count":  len(routes),
			"routes": routes,
		})
	})
}

// requestContext bounds profile lookups by the configured timeout
func (m *Module) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if d := m.requestTimeout(); d > 0 {
		return context.WithTimeout(r.Context(), d)
	}
	return context.WithCancel(r.Context())
}

// GET /api/convert?id=<input>
func (m *Module) handleConvert(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("id")
	if input == "" {
		ErrorResponse(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	ctx, cancel := m.requestContext(r)
	defer cancel()

	result := m.converter.Convert(ctx, input)
	JSONResponse(w, statusFor(result), result)
}

// POST /api/convert {"ids": [...]}
func (m *Module) handleConvertBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBatchBody)).Decode(&req); err != nil {
		ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		ErrorResponse(w, http.StatusBadRequest, "ids must not be empty")
		return
	}
	if limit := m.maxBatch(); limit > 0 && len(req.IDs) > limit {
		ErrorResponse(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("at most %d ids per request", limit))
		return
	}

	ctx, cancel := m.requestContext(r)
	defer cancel()

	results := m.converter.ConvertAll(ctx, req.IDs)
	JSONResponse(w, http.StatusOK, BatchResponse{
		Count:   len(results),
		Results: results,
	})
}

// GET /api/detect?id=<input>
func (m *Module) handleDetect(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("id")
	JSONResponse(w, http.StatusOK, map[string]interface{}{
		"input": input,
		"type":  m.converter.Detect(input),
	})
}

// statusFor maps a conversion outcome to an HTTP status
func statusFor(r *converter.Result) int {
	switch err := r.Err(); {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, steamid.ErrUnresolvableVanityURL):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
