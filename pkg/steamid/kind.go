// Package steamid detects and converts the textual encodings of a Steam
// account identifier.
//
// Supported inputs: STEAM_X:Y:Z, [U:1:Z], 7656119xxxxxxxxxx,
// steamcommunity.com/profiles/<id64>, steamcommunity.com/id/<vanity> and
// bare account ids.
package steamid

import "fmt"

// Kind is the detected shape of an input string.
type Kind int

const (
	Unrecognized Kind = iota
	BaseForm
	SteamID3
	SteamID64
	CommunityProfileURL
	CommunityVanityURL
	PlainSteamID32
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case BaseForm:
		return "steamid_anybase"
	case SteamID3:
		return "steamid3"
	case SteamID64:
		return "steamid64"
	case CommunityProfileURL:
		return "steamcommunity_profile"
	case CommunityVanityURL:
		return "steamcommunity_id"
	case PlainSteamID32:
		return "steamid32"
	default:
		return "unrecognized"
	}
}

// MarshalText encodes the kind by its wire name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a wire name back into a Kind.
func (k *Kind) UnmarshalText(text []byte) error {
	for c := Unrecognized; c <= PlainSteamID32; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown steamid kind: %q", text)
}
