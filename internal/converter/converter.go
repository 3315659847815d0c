// Package converter is the entry point that turns a free-form Steam identifier
// into every representation and merges in community profile metadata.
package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/corrreia/steamconv/internal/community"
	"github.com/corrreia/steamconv/internal/shared"
	"github.com/corrreia/steamconv/pkg/steamid"
)

// ErrProfileFetchFailed marks a metadata fetch failure. It never invalidates
// the numeric fields of a result.
var ErrProfileFetchFailed = errors.New("could not load steamcommunity data")

// DefaultConcurrency bounds ConvertAll when no limit is configured.
const DefaultConcurrency = 4

// Resolver is the remote profile directory.
type Resolver interface {
	ResolveVanity(ctx context.Context, token string) (uint64, error)
	FetchProfile(ctx context.Context, id64 uint64) (*community.Profile, error)
}

// VanityLookup is implemented by resolvers that return the whole profile
// document behind a vanity token. Convert then reuses it instead of
// fetching the profile a second time.
type VanityLookup interface {
	LookupVanity(ctx context.Context, token string) (*community.Profile, error)
}

// Result is the outcome of one Convert call. Conversion fields are filled
// together or not at all.
type Result struct {
	Input string       `json:"input"`
	Kind  steamid.Kind `json:"type"`

	*steamid.IDs

	CommunityProfile string             `json:"steamcommunity_profile,omitempty"`
	CommunityID      string             `json:"steamcommunity_id,omitempty"`
	CommunityData    *community.Profile `json:"steamcommunity_data,omitempty"`

	Error   string `json:"error,omitempty"`
	Warning string `json:"warn,omitempty"`

	err  error
	warn error
}

// Err returns the conversion error, if any.
func (r *Result) Err() error { return r.err }

// Warn returns the metadata error, if any.
func (r *Result) Warn() error { return r.warn }

// OK reports whether the numeric conversion succeeded.
func (r *Result) OK() bool { return r.err == nil && r.IDs != nil }

func (r *Result) fail(err error) *Result {
	r.err = err
	r.Error = err.Error()
	return r
}

// Service converts identifiers. A nil resolver makes it fully offline: vanity
// URLs fail and no metadata is fetched.
type Service struct {
	resolver    Resolver
	concurrency int
	log         shared.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency bounds how many inputs ConvertAll processes at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a Service.
func New(resolver Resolver, opts ...Option) *Service {
	s := &Service{
		resolver:    resolver,
		concurrency: DefaultConcurrency,
		log:         shared.GetLogger("Converter"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Online reports whether a resolver is configured.
func (s *Service) Online() bool {
	return s.resolver != nil
}

// Convert detects, converts and enriches a single input. It always returns a
// result; failures are carried in Err and Warn.
func (s *Service) Convert(ctx context.Context, input string) *Result {
	input = strings.TrimSpace(input)
	kind, field := steamid.Detect(input)
	r := &Result{Input: input, Kind: kind}
	log := s.log.WithField("input", input)

	if kind == steamid.Unrecognized {
		log.Debug("unrecognized input")
		return r.fail(steamid.ErrInvalidInputFormat)
	}

	var (
		canonical steamid.Canonical
		profile   *community.Profile
		err       error
	)
	if kind == steamid.CommunityVanityURL {
		canonical, profile, err = s.resolveVanity(ctx, field)
	} else {
		canonical, err = steamid.ToCanonical(kind, field)
	}
	if err != nil {
		log.Debug("conversion failed: %v", err)
		return r.fail(err)
	}

	ids := steamid.FromCanonical(canonical)
	r.IDs = &ids
	r.CommunityProfile = steamid.CommunityProfileLink(ids.SteamID64)

	switch {
	case profile != nil:
		applyProfile(r, profile)
	case s.resolver != nil:
		s.mergeProfile(ctx, r, canonical.SteamID64())
	}
	log.WithField("type", kind.String()).Debug("converted to %s", ids.SteamID64)
	return r
}

// ConvertAll converts inputs concurrently. Results keep input order.
func (s *Service) ConvertAll(ctx context.Context, inputs []string) []*Result {
	results := make([]*Result, len(inputs))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = s.Convert(ctx, in)
			return nil
		})
	}
	g.Wait()
	return results
}

// Detect classifies input without converting it.
func (s *Service) Detect(input string) steamid.Kind {
	kind, _ := steamid.Detect(strings.TrimSpace(input))
	return kind
}

func (s *Service) resolveVanity(ctx context.Context, token string) (steamid.Canonical, *community.Profile, error) {
	if s.resolver == nil {
		return steamid.Canonical{}, nil, fmt.Errorf("%w: %s: no profile resolver configured", steamid.ErrUnresolvableVanityURL, token)
	}

	var (
		profile *community.Profile
		id64    uint64
		err     error
	)
	if lookup, ok := s.resolver.(VanityLookup); ok {
		profile, err = lookup.LookupVanity(ctx, token)
		if err == nil {
			id64, err = profile.ID64()
		}
	} else {
		id64, err = s.resolver.ResolveVanity(ctx, token)
	}
	if err != nil {
		return steamid.Canonical{}, nil, fmt.Errorf("%w: %s: %v", steamid.ErrUnresolvableVanityURL, token, err)
	}

	c, err := steamid.FromSteamID64(id64)
	if err != nil {
		return steamid.Canonical{}, nil, fmt.Errorf("%w: %s: %v", steamid.ErrUnresolvableVanityURL, token, err)
	}
	return c, profile, nil
}

// mergeProfile adds metadata fields; it never touches conversion fields.
func (s *Service) mergeProfile(ctx context.Context, r *Result, id64 uint64) {
	profile, err := s.resolver.FetchProfile(ctx, id64)
	if err != nil {
		r.warn = fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
		r.Warning = r.warn.Error()
		s.log.WithField("steamid64", id64).Warning("profile fetch failed: %v", err)
		return
	}
	applyProfile(r, profile)
}

func applyProfile(r *Result, profile *community.Profile) {
	r.CommunityData = profile
	if profile.CustomURL != "" {
		r.CommunityID = steamid.CommunityVanityLink(profile.CustomURL)
	}
}
