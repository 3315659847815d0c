package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rabscuttleXML = `<?xml version="1.0" encoding="UTF-8"?>
<profile>
	<steamID64>76561197960287931</steamID64>
	<steamID><![CDATA[Rabscuttle]]></steamID>
	<onlineState>online</onlineState>
	<privacyState>public</privacyState>
	<customURL><![CDATA[rabscuttle]]></customURL>
</profile>`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	var cli CLI
	parser, err := newParser(&cli, kong.Writers(&out, &errOut), kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = ctx.Run()
	return out.String(), err
}

// fields maps the first column of each output line to the rest.
func fields(out string) map[string]string {
	m := map[string]string{}
	for _, line := range strings.Split(out, "\n") {
		f := strings.Fields(line)
		if len(f) >= 2 {
			m[f[0]] = strings.Join(f[1:], " ")
		}
	}
	return m
}

func TestConvertOffline(t *testing.T) {
	out, err := run(t, "convert", "--offline", "STEAM_0:1:11101")
	require.NoError(t, err)

	got := fields(out)
	assert.Equal(t, "steamid_anybase", got["type"])
	assert.Equal(t, "STEAM_0:1:11101", got["steamid"])
	assert.Equal(t, "STEAM_1:1:11101", got["steamid_modern"])
	assert.Equal(t, "22203", got["steamid32"])
	assert.Equal(t, "76561197960287931", got["steamid64"])
	assert.Equal(t, "[U:1:22203]", got["steamid3"])
	assert.Equal(t, "https://steamcommunity.com/profiles/76561197960287931/", got["steamcommunity_profile"])
	assert.NotContains(t, got, "warn")
}

func TestConvertJSON(t *testing.T) {
	out, err := run(t, "convert", "--offline", "--json", "[U:1:22203]", "76561197960287931")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results), out)
	require.Len(t, results, 2)
	assert.Equal(t, "steamid3", results[0]["type"])
	assert.Equal(t, "steamid64", results[1]["type"])
	assert.Equal(t, results[0]["steamid64"], results[1]["steamid64"])
}

func TestConvertReportsFailures(t *testing.T) {
	out, err := run(t, "convert", "--offline", "22203", "not-an-id", "https://steamcommunity.com/id/rabscuttle/")
	require.Error(t, err)
	assert.Equal(t, "2 of 3 inputs failed to convert", err.Error())
	assert.Contains(t, out, "invalid input format")
	assert.Contains(t, out, "unresolvable vanity url")
}

func TestConvertOnline(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/id/rabscuttle/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rabscuttleXML))
	})
	var profileHits atomic.Int32
	mux.HandleFunc("/profiles/76561197960287931/", func(w http.ResponseWriter, r *http.Request) {
		profileHits.Add(1)
		w.Write([]byte(rabscuttleXML))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	t.Setenv("STEAMCONV_COMMUNITY_URL", srv.URL)

	out, err := run(t, "convert", "--json", "https://steamcommunity.com/id/rabscuttle/")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, "steamcommunity_id", result["type"])
	assert.Equal(t, "1:11101", result["steamid_base"])
	assert.Equal(t, "https://steamcommunity.com/id/rabscuttle/", result["steamcommunity_id"])
	data := result["steamcommunity_data"].(map[string]any)
	assert.Equal(t, "Rabscuttle", data["steamID"])
	assert.Zero(t, profileHits.Load(), "the vanity document already carries the profile")
}

func TestDetect(t *testing.T) {
	out, err := run(t, "detect", "STEAM_1:0:5", "U:1:10", "76561197960265728", "12345", "hello")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"STEAM_1:0:5":       "steamid_anybase",
		"U:1:10":            "steamid3",
		"76561197960265728": "steamid64",
		"12345":             "steamid32",
		"hello":             "unrecognized",
	}, fields(out))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "steamconv dev\n", out)
}

func TestServeWatchNeedsConfig(t *testing.T) {
	var cli CLI
	parser, err := newParser(&cli, kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}), kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"serve", "--watch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch needs --config")
}
