// Package http provides the SteamConv HTTP API module.
// It serves identifier conversion and the built-in status endpoints.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/corrreia/steamconv/internal/config"
	"github.com/corrreia/steamconv/internal/converter"
	"github.com/corrreia/steamconv/internal/shared"
)

// Module implements the HTTP server module
type Module struct {
	mu         sync.RWMutex
	server     *http.Server
	listener   net.Listener
	router     *Router
	converter  *converter.Service
	config     *Config
	configPath string
	configured bool
	running    bool
	served     chan struct{}
}

// Config represents the HTTP module configuration
type Config struct {
	Enabled        bool   `json:"enabled" yaml:"enabled" env:"STEAMCONV_HTTP_ENABLED"`
	Host           string `json:"host" yaml:"host" env:"STEAMCONV_HTTP_HOST"`
	Port           int    `json:"port" yaml:"port" env:"STEAMCONV_HTTP_PORT"`
	EnableCORS     bool   `json:"enable_cors" yaml:"enable_cors" env:"STEAMCONV_HTTP_ENABLE_CORS"`
	CORSOrigins    string `json:"cors_origins" yaml:"cors_origins" env:"STEAMCONV_HTTP_CORS_ORIGINS"`
	RequestTimeout int    `json:"request_timeout" yaml:"request_timeout" env:"STEAMCONV_HTTP_REQUEST_TIMEOUT"` // Seconds allowed for profile lookups
	MaxBatch       int    `json:"max_batch" yaml:"max_batch" env:"STEAMCONV_HTTP_MAX_BATCH"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		Host:           "0.0.0.0",
		Port:           8080,
		EnableCORS:     true,
		CORSOrigins:    "*",
		RequestTimeout: 10,
		MaxBatch:       100,
	}
}

// New creates a new HTTP module serving conversions through svc
func New(svc *converter.Service) *Module {
	m := &Module{
		router:    NewRouter(),
		converter: svc,
		config:    DefaultConfig(),
	}
	m.registerBuiltinRoutes()
	return m
}

// Name returns the module name
func (m *Module) Name() string {
	return "HTTP"
}

// Version returns the module version
func (m *Module) Version() string {
	return "1.0.0"
}

// Priority returns the module load priority
func (m *Module) Priority() int {
	return 50 // Load after community
}

// Init initializes the HTTP module
func (m *Module) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.configured {
		if err := m.loadConfig(); err != nil {
			return err
		}
	}

	if m.config.Enabled {
		return m.startServerLocked()
	}

	return nil
}

// Shutdown shuts down the HTTP module
func (m *Module) Shutdown() error {
	if err := m.Stop(); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// loadConfig loads the configuration from file and environment
func (m *Module) loadConfig() error {
	cfg := DefaultConfig()
	path, err := config.Load(cfg, "http.json", "http.yaml")
	if err != nil {
		return err
	}
	if path == "" {
		shared.LogDebug("HTTP", "Config not found, using defaults")
	} else {
		m.configPath = path
		shared.LogInfo("HTTP", "Loaded config from %s", path)
	}
	m.config = cfg
	m.configured = true
	return nil
}

// LoadConfigFile loads configuration from an explicit path, then environment
func (m *Module) LoadConfigFile(path string) error {
	cfg := DefaultConfig()
	if _, err := config.Load(cfg, path); err != nil {
		return err
	}
	m.SetConfig(cfg)

	m.mu.Lock()
	m.configPath = path
	m.mu.Unlock()
	return nil
}

// Reload re-reads path and applies its request limits to the running server.
// Listener and CORS settings only take effect on restart.
func (m *Module) Reload(path string) error {
	cfg := DefaultConfig()
	if _, err := config.Load(cfg, path); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cur := *m.config
	if cfg.Enabled != cur.Enabled || cfg.Host != cur.Host || cfg.Port != cur.Port ||
		cfg.EnableCORS != cur.EnableCORS || cfg.CORSOrigins != cur.CORSOrigins {
		shared.LogWarning("HTTP", "Listener and CORS changes in %s need a restart", path)
	}
	cur.RequestTimeout = cfg.RequestTimeout
	cur.MaxBatch = cfg.MaxBatch
	m.config = &cur
	m.configPath = path
	shared.LogInfo("HTTP", "Reloaded %s: request_timeout=%ds max_batch=%d", path, cur.RequestTimeout, cur.MaxBatch)
	return nil
}

// Handler returns the router wrapped in the middleware chain
func (m *Module) Handler() http.Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.buildHandler()
}

func (m *Module) buildHandler() http.Handler {
	var handler http.Handler = m.router
	handler = &recoveryMiddleware{handler: handler}

	if m.config.EnableCORS {
		handler = &corsMiddleware{
			handler: handler,
			origins: m.config.CORSOrigins,
		}
	}

	return &loggingMiddleware{handler: handler}
}

// startServerLocked starts the HTTP server (must be called with lock held)
func (m *Module) startServerLocked() error {
	if m.running {
		return nil
	}

	addr := net.JoinHostPort(m.config.Host, fmt.Sprint(m.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	m.server = &http.Server{
		Handler:      m.buildHandler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: time.Duration(m.config.RequestTimeout+10) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	m.listener = ln
	m.served = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shared.LogError("HTTP", "Server stopped: %v", err)
		}
	}(m.server, m.served)

	m.running = true
	shared.LogInfo("HTTP", "Listening on %s", ln.Addr())
	return nil
}

// ============================================================
// Public API
// ============================================================

// IsRunning returns true if the HTTP server is running
func (m *Module) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// GetAddress returns the bound server address
func (m *Module) GetAddress() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.running || m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Stop stops the HTTP server, waiting up to 5s for in-flight requests.
// The lock is released first so draining handlers can still read config.
func (m *Module) Stop() error {
	m.mu.Lock()
	srv, done := m.server, m.served
	m.server, m.listener, m.running = nil, nil, false
	m.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(ctx)
	<-done
	return err
}

// Done is closed once the running server has stopped serving.
// It returns nil when the server is not running.
func (m *Module) Done() <-chan struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.running {
		return nil
	}
	return m.served
}

// SetConfig sets the configuration
func (m *Module) SetConfig(cfg *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = cfg
	m.configured = true
}

// GetConfig returns a copy of the configuration
func (m *Module) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

func (m *Module) requestTimeout() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config.RequestTimeout <= 0 {
		return 0
	}
	return time.Duration(m.config.RequestTimeout) * time.Second
}

func (m *Module) maxBatch() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.MaxBatch
}
