// Package community talks to the Steam Community profile directory to resolve
// vanity URLs and fetch profile metadata.
package community

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/corrreia/steamconv/internal/shared"
)

// maxDocumentSize caps how much of a profile document is read.
const maxDocumentSize = 1 << 20

// Config represents the community client configuration
type Config struct {
	BaseURL   string `json:"base_url" yaml:"base_url" env:"STEAMCONV_COMMUNITY_URL"`
	UserAgent string `json:"user_agent" yaml:"user_agent" env:"STEAMCONV_COMMUNITY_USER_AGENT"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "https://steamcommunity.com",
		UserAgent: "steamconv/1.0",
	}
}

// Error is a failure reported by steamcommunity.com itself.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "steamcommunity: " + e.Message
}

// Client fetches profile documents. It has no timeout of its own; callers
// bound each call with the context they pass.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	log       shared.Logger
}

// NewClient creates a client. A nil httpClient uses a fresh http.Client.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		log:       shared.GetLogger("Community"),
	}
}

// ResolveVanity maps a vanity token to its 64-bit id.
func (c *Client) ResolveVanity(ctx context.Context, token string) (uint64, error) {
	p, err := c.LookupVanity(ctx, token)
	if err != nil {
		return 0, err
	}
	return p.ID64()
}

// LookupVanity fetches the profile document behind a vanity token.
func (c *Client) LookupVanity(ctx context.Context, token string) (*Profile, error) {
	if token == "" {
		return nil, fmt.Errorf("empty vanity token")
	}
	return c.fetch(ctx, "/id/"+url.PathEscape(token)+"/")
}

// FetchProfile fetches profile metadata for a 64-bit id.
func (c *Client) FetchProfile(ctx context.Context, id64 uint64) (*Profile, error) {
	return c.fetch(ctx, "/profiles/"+strconv.FormatUint(id64, 10)+"/")
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) fetch(ctx context.Context, path string) (*Profile, error) {
	endpoint := c.baseURL + path + "?xml=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.log.Debug("GET %s", endpoint)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentSize))
		return nil, fmt.Errorf("fetch %s: unexpected status %s", path, resp.Status)
	}

	root, err := xmlquery.Parse(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("parse profile document: %w", err)
	}
	return parseProfile(root)
}
