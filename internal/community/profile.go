package community

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

// Profile is the subset of a steamcommunity.com profile document we expose.
type Profile struct {
	SteamID64        string `json:"steamID64"`
	SteamID          string `json:"steamID,omitempty"`
	CustomURL        string `json:"customURL,omitempty"`
	OnlineState      string `json:"onlineState,omitempty"`
	StateMessage     string `json:"stateMessage,omitempty"`
	PrivacyState     string `json:"privacyState,omitempty"`
	VisibilityState  int    `json:"visibilityState,omitempty"`
	AvatarIcon       string `json:"avatarIcon,omitempty"`
	AvatarMedium     string `json:"avatarMedium,omitempty"`
	AvatarFull       string `json:"avatarFull,omitempty"`
	VACBanned        bool   `json:"vacBanned"`
	TradeBanState    string `json:"tradeBanState,omitempty"`
	IsLimitedAccount bool   `json:"isLimitedAccount"`
	MemberSince      string `json:"memberSince,omitempty"`
	Location         string `json:"location,omitempty"`
	RealName         string `json:"realname,omitempty"`
	Headline         string `json:"headline,omitempty"`
	Summary          string `json:"summary,omitempty"`
}

// ID64 parses the profile's 64-bit id.
func (p *Profile) ID64() (uint64, error) {
	id, err := strconv.ParseUint(p.SteamID64, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("profile steamID64 %q: %w", p.SteamID64, err)
	}
	return id, nil
}

// parseProfile reads a profile document. A <response><error> document is
// returned as *Error.
func parseProfile(root *xmlquery.Node) (*Profile, error) {
	if e := xmlquery.FindOne(root, "/response/error"); e != nil {
		return nil, &Error{Message: strings.TrimSpace(e.InnerText())}
	}

	node := xmlquery.FindOne(root, "/profile")
	if node == nil {
		return nil, &Error{Message: "no profile element in response"}
	}

	text := func(name string) string {
		if n := node.SelectElement(name); n != nil {
			return strings.TrimSpace(n.InnerText())
		}
		return ""
	}

	p := &Profile{
		SteamID64:        text("steamID64"),
		SteamID:          text("steamID"),
		CustomURL:        text("customURL"),
		OnlineState:      text("onlineState"),
		StateMessage:     text("stateMessage"),
		PrivacyState:     text("privacyState"),
		AvatarIcon:       text("avatarIcon"),
		AvatarMedium:     text("avatarMedium"),
		AvatarFull:       text("avatarFull"),
		VACBanned:        text("vacBanned") == "1",
		TradeBanState:    text("tradeBanState"),
		IsLimitedAccount: text("isLimitedAccount") == "1",
		MemberSince:      text("memberSince"),
		Location:         text("location"),
		RealName:         text("realname"),
		Headline:         text("headline"),
		Summary:          text("summary"),
	}
	if v := text("visibilityState"); v != "" {
		p.VisibilityState, _ = strconv.Atoi(v)
	}
	if p.SteamID64 == "" {
		return nil, &Error{Message: "profile has no steamID64"}
	}
	return p, nil
}
