package community

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/corrreia/steamconv/internal/config"
	"github.com/corrreia/steamconv/internal/shared"
)

var errNotInitialized = errors.New("community module not initialized")

// Module owns the shared community client for the server process.
type Module struct {
	mu         sync.RWMutex
	client     *Client
	config     *Config
	configPath string
	httpClient *http.Client
}

// NewModule creates the community module. A nil httpClient uses a fresh http.Client.
func NewModule(httpClient *http.Client) *Module {
	return &Module{
		config:     DefaultConfig(),
		httpClient: httpClient,
	}
}

// Name returns the module name
func (m *Module) Name() string {
	return "Community"
}

// Version returns the module version
func (m *Module) Version() string {
	return "1.0.0"
}

// Priority returns the module load priority
func (m *Module) Priority() int {
	return 10 // Load before HTTP
}

// Init loads config and builds the client
func (m *Module) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg := DefaultConfig()
	path, err := config.Load(cfg, "community.json", "community.yaml")
	if err != nil {
		return err
	}
	if path != "" {
		m.configPath = path
		shared.LogInfo("Community", "Loaded config from %s", path)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url %q: %w", cfg.BaseURL, err)
	}

	m.config = cfg
	m.client = NewClient(*cfg, m.httpClient)
	return nil
}

// Shutdown releases idle connections
func (m *Module) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client != nil {
		m.client.CloseIdleConnections()
		m.client = nil
	}
	return nil
}

// Client returns the initialized client, or nil before Init
func (m *Module) Client() *Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.client
}

// GetConfig returns a copy of the configuration
func (m *Module) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.config
}

// ResolveVanity delegates to the module's client
func (m *Module) ResolveVanity(ctx context.Context, token string) (uint64, error) {
	c := m.Client()
	if c == nil {
		return 0, errNotInitialized
	}
	return c.ResolveVanity(ctx, token)
}

// FetchProfile delegates to the module's client
func (m *Module) FetchProfile(ctx context.Context, id64 uint64) (*Profile, error) {
	c := m.Client()
	if c == nil {
		return nil, errNotInitialized
	}
	return c.FetchProfile(ctx, id64)
}

// LookupVanity delegates to the module's client
func (m *Module) LookupVanity(ctx context.Context, token string) (*Profile, error) {
	c := m.Client()
	if c == nil {
		return nil, errNotInitialized
	}
	return c.LookupVanity(ctx, token)
}
