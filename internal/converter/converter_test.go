package converter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/corrreia/steamconv/internal/community"
	"github.com/corrreia/steamconv/pkg/steamid"
)

// fakeResolver serves canned vanity mappings and profiles.
type fakeResolver struct {
	mu       sync.Mutex
	vanity   map[string]uint64
	profiles map[uint64]*community.Profile
	fetches  atomic.Int32
}

func (f *fakeResolver) ResolveVanity(ctx context.Context, token string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.vanity[token]
	if !ok {
		return 0, &community.Error{Message: "The specified profile could not be found."}
	}
	return id, nil
}

func (f *fakeResolver) FetchProfile(ctx context.Context, id64 uint64) (*community.Profile, error) {
	f.fetches.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id64]
	if !ok {
		return nil, fmt.Errorf("fetch /profiles/%d/: unexpected status 503 Service Unavailable", id64)
	}
	return p, nil
}

func newFake() *fakeResolver {
	return &fakeResolver{
		vanity: map[string]uint64{
			"rabscuttle": 76561197960287931,
			"tooLow":     42,
		},
		profiles: map[uint64]*community.Profile{
			76561197960287931: {SteamID64: "76561197960287931", SteamID: "Rabscuttle", CustomURL: "rabscuttle"},
		},
	}
}

var resultOpts = cmp.Options{cmpopts.IgnoreUnexported(Result{})}

var rabscuttle = &steamid.IDs{
	Universe:      1,
	AccountNumber: 11101,
	SteamIDBase:   "1:11101",
	SteamID:       "STEAM_0:1:11101",
	SteamIDModern: "STEAM_1:1:11101",
	SteamID32:     22203,
	SteamID64:     "76561197960287931",
	SteamID3:      "[U:1:22203]",
}

func TestConvertOffline(t *testing.T) {
	svc := New(nil)

	got := svc.Convert(context.Background(), "  STEAM_0:1:11101\n")
	want := &Result{
		Input:            "STEAM_0:1:11101",
		Kind:             steamid.BaseForm,
		IDs:              rabscuttle,
		CommunityProfile: "https://steamcommunity.com/profiles/76561197960287931/",
	}
	if diff := cmp.Diff(want, got, resultOpts); diff != "" {
		t.Errorf("Convert mismatch (-want +got):\n%s", diff)
	}
	if !got.OK() || got.Err() != nil || got.Warn() != nil {
		t.Errorf("unexpected failure state: err=%v warn=%v", got.Err(), got.Warn())
	}
}

func TestConvertWithProfile(t *testing.T) {
	fake := newFake()
	svc := New(fake)

	got := svc.Convert(context.Background(), "76561197960287931")
	want := &Result{
		Input:            "76561197960287931",
		Kind:             steamid.SteamID64,
		IDs:              rabscuttle,
		CommunityProfile: "https://steamcommunity.com/profiles/76561197960287931/",
		CommunityID:      "https://steamcommunity.com/id/rabscuttle/",
		CommunityData:    fake.profiles[76561197960287931],
	}
	if diff := cmp.Diff(want, got, resultOpts); diff != "" {
		t.Errorf("Convert mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertVanity(t *testing.T) {
	svc := New(newFake())

	got := svc.Convert(context.Background(), "https://steamcommunity.com/id/rabscuttle/")
	if got.Err() != nil {
		t.Fatal(got.Err())
	}
	if got.Kind != steamid.CommunityVanityURL {
		t.Errorf("kind = %v, want %v", got.Kind, steamid.CommunityVanityURL)
	}
	if diff := cmp.Diff(rabscuttle, got.IDs); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if got.CommunityData == nil || got.CommunityData.SteamID != "Rabscuttle" {
		t.Errorf("profile not merged: %+v", got.CommunityData)
	}
}

// lookupResolver also serves whole vanity documents.
type lookupResolver struct {
	*fakeResolver
	lookups atomic.Int32
}

func (l *lookupResolver) LookupVanity(ctx context.Context, token string) (*community.Profile, error) {
	l.lookups.Add(1)
	l.mu.Lock()
	defer l.mu.Unlock()
	id, ok := l.vanity[token]
	if !ok {
		return nil, &community.Error{Message: "The specified profile could not be found."}
	}
	if p, ok := l.profiles[id]; ok {
		return p, nil
	}
	return &community.Profile{SteamID64: fmt.Sprint(id)}, nil
}

func TestConvertVanityReusesLookupDocument(t *testing.T) {
	fake := &lookupResolver{fakeResolver: newFake()}
	svc := New(fake)

	got := svc.Convert(context.Background(), "https://steamcommunity.com/id/rabscuttle/")
	want := &Result{
		Input:            "https://steamcommunity.com/id/rabscuttle/",
		Kind:             steamid.CommunityVanityURL,
		IDs:              rabscuttle,
		CommunityProfile: "https://steamcommunity.com/profiles/76561197960287931/",
		CommunityID:      "https://steamcommunity.com/id/rabscuttle/",
		CommunityData:    fake.profiles[76561197960287931],
	}
	if diff := cmp.Diff(want, got, resultOpts); diff != "" {
		t.Errorf("Convert mismatch (-want +got):\n%s", diff)
	}
	if n := fake.lookups.Load(); n != 1 {
		t.Errorf("lookups = %d, want 1", n)
	}
	if n := fake.fetches.Load(); n != 0 {
		t.Errorf("vanity input refetched the profile %d times", n)
	}

	for _, in := range []string{"https://steamcommunity.com/id/nobody/", "https://steamcommunity.com/id/tooLow/"} {
		got := svc.Convert(context.Background(), in)
		if !errors.Is(got.Err(), steamid.ErrUnresolvableVanityURL) {
			t.Errorf("Convert(%q) err = %v, want ErrUnresolvableVanityURL", in, got.Err())
		}
		if got.IDs != nil || got.CommunityData != nil {
			t.Errorf("Convert(%q) left derived fields: %+v", in, got)
		}
	}
}

func TestConvertVanityFailures(t *testing.T) {
	tests := []struct {
		name string
		svc  *Service
		in   string
	}{
		{"unknown token", New(newFake()), "https://steamcommunity.com/id/nobody/"},
		{"id below base", New(newFake()), "https://steamcommunity.com/id/tooLow/"},
		{"offline", New(nil), "https://steamcommunity.com/id/rabscuttle/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.svc.Convert(context.Background(), tc.in)
			if !errors.Is(got.Err(), steamid.ErrUnresolvableVanityURL) {
				t.Errorf("err = %v, want ErrUnresolvableVanityURL", got.Err())
			}
			if got.Kind != steamid.CommunityVanityURL {
				t.Errorf("kind = %v", got.Kind)
			}
			if got.IDs != nil || got.CommunityProfile != "" {
				t.Errorf("conversion fields set on failure: %+v", got)
			}
		})
	}
}

func TestConvertProfileFetchFailedIsWarning(t *testing.T) {
	svc := New(newFake())

	got := svc.Convert(context.Background(), "[U:1:4]")
	if got.Err() != nil {
		t.Fatalf("err = %v, want nil", got.Err())
	}
	if !errors.Is(got.Warn(), ErrProfileFetchFailed) {
		t.Errorf("warn = %v, want ErrProfileFetchFailed", got.Warn())
	}
	if got.Warning == "" || got.Error != "" {
		t.Errorf("Warning=%q Error=%q", got.Warning, got.Error)
	}
	if got.IDs == nil || got.SteamIDBase != "0:2" || got.SteamID64 != "76561197960265732" {
		t.Errorf("numeric fields damaged: %+v", got.IDs)
	}
}

func TestConvertTerminalErrors(t *testing.T) {
	fake := newFake()
	svc := New(fake)

	tests := []struct {
		in   string
		kind steamid.Kind
		want error
	}{
		{"not-an-id!!", steamid.Unrecognized, steamid.ErrInvalidInputFormat},
		{"", steamid.Unrecognized, steamid.ErrInvalidInputFormat},
		{"76561197960265727", steamid.SteamID64, steamid.ErrArithmeticUnderflow},
		{"https://steamcommunity.com/profiles/5/", steamid.CommunityProfileURL, steamid.ErrArithmeticUnderflow},
		{"18446744073709551615", steamid.PlainSteamID32, steamid.ErrInvalidInputFormat},
		{"STEAM_0:1:9223372036854775807", steamid.BaseForm, steamid.ErrInvalidInputFormat},
	}
	for _, tc := range tests {
		got := svc.Convert(context.Background(), tc.in)
		if !errors.Is(got.Err(), tc.want) {
			t.Errorf("Convert(%q) err = %v, want %v", tc.in, got.Err(), tc.want)
		}
		if got.Kind != tc.kind {
			t.Errorf("Convert(%q) kind = %v, want %v", tc.in, got.Kind, tc.kind)
		}
		if got.OK() || got.IDs != nil || got.CommunityProfile != "" || got.CommunityData != nil {
			t.Errorf("Convert(%q) left derived fields: %+v", tc.in, got)
		}
	}
	if n := fake.fetches.Load(); n != 0 {
		t.Errorf("terminal errors triggered %d profile fetches", n)
	}
}

func TestUnrecognizedJSON(t *testing.T) {
	got := New(nil).Convert(context.Background(), "not-an-id!!")
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"input":"not-an-id!!","type":"unrecognized","error":"invalid input format"}`
	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}
}

func TestResultJSONFieldNames(t *testing.T) {
	got := New(nil).Convert(context.Background(), "STEAM_0:1:11101")
	data, err := json.Marshal(got)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"type", "steamid_base", "steamid", "steamid_modern", "steamid32", "steamid64", "steamid3", "steamcommunity_profile", "universe", "account_number"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing %q in %s", key, data)
		}
	}
	if fields["steamid64"] != "76561197960287931" {
		t.Errorf("steamid64 = %v, want decimal string", fields["steamid64"])
	}
}

func TestConvertAllKeepsOrder(t *testing.T) {
	svc := New(newFake(), WithConcurrency(2))

	inputs := []string{"STEAM_0:1:11101", "garbage", "22203", "https://steamcommunity.com/id/nobody/", "76561197960287931"}
	results := svc.ConvertAll(context.Background(), inputs)
	if len(results) != len(inputs) {
		t.Fatalf("got %d results, want %d", len(results), len(inputs))
	}
	for i, r := range results {
		if r.Input != inputs[i] {
			t.Errorf("result %d input = %q, want %q", i, r.Input, inputs[i])
		}
	}
	okWant := []bool{true, false, true, false, true}
	for i, r := range results {
		if r.OK() != okWant[i] {
			t.Errorf("result %d (%q) OK = %v, want %v", i, r.Input, r.OK(), okWant[i])
		}
	}
}

func TestServiceDetect(t *testing.T) {
	svc := New(nil)
	if k := svc.Detect(" [U:1:22203] "); k != steamid.SteamID3 {
		t.Errorf("Detect = %v, want %v", k, steamid.SteamID3)
	}
	if svc.Online() {
		t.Error("nil resolver reported online")
	}
}
