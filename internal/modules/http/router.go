// Package http provides the SteamConv HTTP API module.
// This file contains the HTTP router implementation.
package http

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

// RouteInfo represents route information for listing
type RouteInfo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Router is a simple HTTP router
type Router struct {
	mu       sync.RWMutex
	routes   map[string]map[string]http.HandlerFunc // method -> path -> handler
	notFound http.HandlerFunc
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]map[string]http.HandlerFunc),
		notFound: func(w http.ResponseWriter, r *http.Request) {
			ErrorResponse(w, http.StatusNotFound, "not found")
		},
	}
}

// ServeHTTP implements http.Handler
func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.mu.RLock()
	methodRoutes, ok := router.routes[r.Method]
	if !ok {
		router.mu.RUnlock()
		router.notFound(w, r)
		return
	}

	// Try exact match first
	handler, ok := methodRoutes[r.URL.Path]
	if ok {
		router.mu.RUnlock()
		handler(w, r)
		return
	}

	// Try pattern matching
	for pattern, h := range methodRoutes {
		if matchPath(pattern, r.URL.Path) {
			router.mu.RUnlock()
			h(w, r)
			return
		}
	}
	router.mu.RUnlock()

	router.notFound(w, r)
}

// HandleFunc registers a handler for a method and path
func (router *Router) HandleFunc(method, path string, handler http.HandlerFunc) {
	router.mu.Lock()
	defer router.mu.Unlock()

	method = strings.ToUpper(method)
	if router.routes[method] == nil {
		router.routes[method] = make(map[string]http.HandlerFunc)
	}
	router.routes[method][path] = handler
}

// GET registers a GET handler
func (router *Router) GET(path string, handler http.HandlerFunc) {
	router.HandleFunc(http.MethodGet, path, handler)
}

// POST registers a POST handler
func (router *Router) POST(path string, handler http.HandlerFunc) {
	router.HandleFunc(http.MethodPost, path, handler)
}

// GetRoutes returns all registered routes sorted by path then method
func (router *Router) GetRoutes() []RouteInfo {
	router.mu.RLock()
	defer router.mu.RUnlock()

	var routes []RouteInfo
	for method, paths := range router.routes {
		for path := range paths {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   path,
			})
		}
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes
}

// Group creates a route group with a common prefix
func (router *Router) Group(prefix string) *RouteGroup {
	return &RouteGroup{
		router: router,
		prefix: prefix,
	}
}

// RouteGroup represents a group of routes with a common prefix
type RouteGroup struct {
	router *Router
	prefix string
}

// GET registers a GET handler
func (g *RouteGroup) GET(path string, handler http.HandlerFunc) {
	g.router.GET(g.prefix+path, handler)
}

// POST registers a POST handler
func (g *RouteGroup) POST(path string, handler http.HandlerFunc) {
	g.router.POST(g.prefix+path, handler)
}

// matchPath matches a pattern with an optional trailing "*" wildcard
func matchPath(pattern, path string) bool {
	if pattern == path {
		return true
	}

	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(path, prefix)
	}

	return false
}
