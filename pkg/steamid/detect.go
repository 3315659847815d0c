package steamid

import "regexp"

// matcher recognizes one input shape and pulls out the field the converter needs.
type matcher struct {
	kind    Kind
	pattern *regexp.Regexp
	extract func(m []string) string
}

func firstGroup(m []string) string { return m[1] }

// matchers is evaluated in order; the first hit wins. New formats must be
// slotted in by priority, never appended blindly.
var matchers = []matcher{
	{
		kind:    BaseForm,
		pattern: regexp.MustCompile(`^STEAM_[01]:([01]):(\d+)$`),
		extract: func(m []string) string { return m[1] + ":" + m[2] },
	},
	{
		kind:    SteamID3,
		pattern: regexp.MustCompile(`^\[?U:1:(\d+)\]?$`),
		extract: firstGroup,
	},
	{
		kind:    SteamID64,
		pattern: regexp.MustCompile(`^7656119\d{10}$`),
		extract: func(m []string) string { return m[0] },
	},
	{
		kind:    CommunityProfileURL,
		pattern: regexp.MustCompile(`^https?://steamcommunity\.com/profiles/(\d+)/?$`),
		extract: firstGroup,
	},
	{
		kind:    CommunityVanityURL,
		pattern: regexp.MustCompile(`^https?://steamcommunity\.com/id/([^/?#]+)/?$`),
		extract: firstGroup,
	},
	{
		kind:    PlainSteamID32,
		pattern: regexp.MustCompile(`^\d+$`),
		extract: func(m []string) string { return m[0] },
	},
}

// Detect classifies input and returns the field extracted by the matching
// pattern. Unrecognized input yields an empty field.
func Detect(input string) (Kind, string) {
	for _, m := range matchers {
		if sub := m.pattern.FindStringSubmatch(input); sub != nil {
			return m.kind, m.extract(sub)
		}
	}
	return Unrecognized, ""
}
