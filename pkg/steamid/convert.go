package steamid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Base64 is the SteamID64 of account 0 in universe 0 for individual accounts.
const Base64 uint64 = 76561197960265728

// MaxAccountNumber is the largest account number whose SteamID64 fits in a uint64
// for either universe.
const MaxAccountNumber uint64 = (math.MaxUint64 - Base64 - 1) / 2

// Canonical is the (universe, account number) pair every format derives from.
type Canonical struct {
	Universe      uint8  `json:"universe"`
	AccountNumber uint64 `json:"account_number"`
}

// IDs holds every representation of one canonical pair.
type IDs struct {
	Universe      uint8  `json:"universe"`
	AccountNumber uint64 `json:"account_number"`
	SteamIDBase   string `json:"steamid_base"`
	SteamID       string `json:"steamid"`
	SteamIDModern string `json:"steamid_modern"`
	SteamID32     uint64 `json:"steamid32"`
	SteamID64     string `json:"steamid64"`
	SteamID3      string `json:"steamid3"`
}

// ToCanonical converts a detected field into its canonical pair.
// Vanity URLs cannot be converted locally and always fail with ErrUnresolvableVanityURL.
func ToCanonical(kind Kind, field string) (Canonical, error) {
	switch kind {
	case BaseForm:
		c, err := parseBase(field)
		if err != nil {
			return Canonical{}, err
		}
		return c, checkRange(c)
	case SteamID3, PlainSteamID32:
		id32, err := parseUint(field)
		if err != nil {
			return Canonical{}, err
		}
		c := FromSteamID32(id32)
		return c, checkRange(c)
	case SteamID64, CommunityProfileURL:
		id64, err := parseUint(field)
		if err != nil {
			return Canonical{}, err
		}
		return FromSteamID64(id64)
	case CommunityVanityURL:
		return Canonical{}, fmt.Errorf("%w: %s", ErrUnresolvableVanityURL, field)
	default:
		return Canonical{}, ErrInvalidInputFormat
	}
}

// FromSteamID32 splits an account id into its universe bit and account number.
func FromSteamID32(id32 uint64) Canonical {
	return Canonical{
		Universe:      uint8(id32 % 2),
		AccountNumber: id32 / 2,
	}
}

// FromSteamID64 recovers the canonical pair from a 64-bit id.
func FromSteamID64(id64 uint64) (Canonical, error) {
	if id64 < Base64 {
		return Canonical{}, fmt.Errorf("%w: %d", ErrArithmeticUnderflow, id64)
	}
	// Base64 is even, so the parity of id64 is the universe bit.
	var c Canonical
	remainder := id64 - Base64
	if id64%2 == 1 {
		c.Universe = 1
		remainder = id64 - (Base64 + 1)
	}
	c.AccountNumber = remainder / 2
	return c, nil
}

// FromCanonical projects the pair into all representations.
func FromCanonical(c Canonical) IDs {
	id32 := c.SteamID32()
	return IDs{
		Universe:      c.Universe,
		AccountNumber: c.AccountNumber,
		SteamIDBase:   c.String(),
		SteamID:       "STEAM_0:" + c.String(),
		SteamIDModern: "STEAM_1:" + c.String(),
		SteamID32:     id32,
		SteamID64:     strconv.FormatUint(c.SteamID64(), 10),
		SteamID3:      FormatSteamID3(id32),
	}
}

// Canonical returns the pair the representations were derived from.
func (ids IDs) Canonical() Canonical {
	return Canonical{Universe: ids.Universe, AccountNumber: ids.AccountNumber}
}

// String formats the pair as "universe:account".
func (c Canonical) String() string {
	return strconv.FormatUint(uint64(c.Universe), 10) + ":" + strconv.FormatUint(c.AccountNumber, 10)
}

// SteamID32 returns accountNumber*2 + universe.
func (c Canonical) SteamID32() uint64 {
	return c.AccountNumber*2 + uint64(c.Universe)
}

// SteamID64 returns accountNumber*2 + Base64 + universe.
func (c Canonical) SteamID64() uint64 {
	return c.AccountNumber*2 + Base64 + uint64(c.Universe)
}

// FormatSteamID3 formats an account id as [U:1:Z].
func FormatSteamID3(id32 uint64) string {
	return "[U:1:" + strconv.FormatUint(id32, 10) + "]"
}

// CommunityProfileLink returns the canonical profile URL for a 64-bit id.
func CommunityProfileLink(id64 string) string {
	return "https://steamcommunity.com/profiles/" + id64 + "/"
}

// CommunityVanityLink returns the profile URL for a custom vanity token.
func CommunityVanityLink(token string) string {
	return "https://steamcommunity.com/id/" + token + "/"
}

func parseBase(field string) (Canonical, error) {
	u, n, ok := strings.Cut(field, ":")
	if !ok || (u != "0" && u != "1") {
		return Canonical{}, fmt.Errorf("%w: steamid base %q", ErrInvalidInputFormat, field)
	}
	account, err := parseUint(n)
	if err != nil {
		return Canonical{}, err
	}
	return Canonical{Universe: uint8(u[0] - '0'), AccountNumber: account}, nil
}

// checkRange rejects pairs whose SteamID64 would wrap past math.MaxUint64.
func checkRange(c Canonical) error {
	if c.AccountNumber > MaxAccountNumber {
		return fmt.Errorf("%w: account number %d out of range", ErrInvalidInputFormat, c.AccountNumber)
	}
	return nil
}

func parseUint(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInputFormat, err)
	}
	return v, nil
}
