package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/corrreia/steamconv/internal/converter"
)

// writeJSON prints a single result as an object and several as an array.
func writeJSON(w io.Writer, results []*converter.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

// writeResults prints one aligned block per result, separated by blank lines.
func writeResults(w io.Writer, results []*converter.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		row := func(key, value string) {
			if value != "" {
				fmt.Fprintf(tw, "%s\t%s\n", key, value)
			}
		}

		row("input", r.Input)
		row("type", r.Kind.String())
		if r.IDs != nil {
			row("steamid_base", r.SteamIDBase)
			row("steamid", r.SteamID)
			row("steamid_modern", r.SteamIDModern)
			row("steamid32", strconv.FormatUint(r.SteamID32, 10))
			row("steamid64", r.SteamID64)
			row("steamid3", r.SteamID3)
			row("steamcommunity_profile", r.CommunityProfile)
			row("steamcommunity_id", r.CommunityID)
		}
		if p := r.CommunityData; p != nil {
			row("name", p.SteamID)
			row("online_state", p.OnlineState)
			row("privacy", p.PrivacyState)
		}
		row("error", r.Error)
		row("warn", r.Warning)
	}
	return tw.Flush()
}

func writeKinds(w io.Writer, svc *converter.Service, inputs []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, in := range inputs {
		fmt.Fprintf(tw, "%s\t%s\n", in, svc.Detect(in))
	}
	return tw.Flush()
}
