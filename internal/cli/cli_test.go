package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeData unmarshals the data field of a JSON response into out.
func decodeData(t *testing.T, output string, out any) {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	require.Equal(t, "ok", resp.Status)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := execCommand(t, NewRootCommand(), "--format", "yaml", "lookup", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootRunsSubcommand(t *testing.T) {
	out, err := execCommand(t, NewRootCommand(), "lookup", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "Aries")
}

func TestLookupTextGolden(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	out, err := execCommand(t, NewLookupCommand(opts), "10")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "lookup_text", []byte(out))
}

func TestLookupJSON(t *testing.T) {
	opts := &RootOptions{Format: "json"}
	out, err := execCommand(t, NewLookupCommand(opts), "10")
	require.NoError(t, err)

	var payload lookupPayload
	decodeData(t, out, &payload)
	assert.Equal(t, 10.0, payload.Longitude)
	assert.Equal(t, "Aries", payload.Sign)
	assert.Equal(t, "Mars", payload.SignLord)
	assert.Equal(t, "Ketu", payload.NakshatraLord)
	assert.Equal(t, "Saturn", payload.SubLord)
}

func TestLookupBadLongitude(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	_, err := execCommand(t, NewLookupCommand(opts), "ten")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPositionJSON(t *testing.T) {
	opts := &RootOptions{Format: "json"}
	out, err := execCommand(t, NewPositionCommand(opts),
		"Sun", "--time", "2000-01-11T12:00:00Z")
	require.NoError(t, err)

	var payload positionPayload
	decodeData(t, out, &payload)
	assert.Equal(t, "Sun", payload.Body)
	assert.InDelta(t, 2451555.0, payload.JulianDay, 1e-9)
	// 280 + 10*0.9856 tropical, minus the Lahiri ayanamsa the default
	// configuration applies.
	assert.InDelta(t, 265.806, payload.Longitude, 1e-6)
	assert.Equal(t, "Sagittarius", payload.Sign)
	assert.False(t, payload.Retrograde)
	assert.InDelta(t, 0.9856, payload.SpeedLongitude, 1e-9)
}

func TestPositionTextGolden(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	out, err := execCommand(t, NewPositionCommand(opts),
		"Sun", "--time", "2000-01-11T12:00:00Z")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "position_text", []byte(out))
}

func TestPositionTextRetrograde(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	out, err := execCommand(t, NewPositionCommand(opts),
		"Mercury", "--time", "2000-02-28T12:00:00Z")
	require.NoError(t, err)
	assert.Contains(t, out, "Mercury at 2000-02-28T12:00:00Z")
	assert.Contains(t, out, "(retrograde)")
	assert.Contains(t, out, "nakshatra lord:")
}

func TestPositionUnknownBody(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	out, err := execCommand(t, NewPositionCommand(opts), "Vulcan")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "UNSUPPORTED_BODY")
}

func TestEventsIngressesText(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	out, err := execCommand(t, NewEventsCommand(opts),
		"ingresses", "Sun",
		"--from", "2000-01-01T12:00:00Z",
		"--to", "2000-03-11T12:00:00Z")
	require.NoError(t, err)
	// Sidereal Sun starts at 255.95 and crosses two sign boundaries in
	// seventy days.
	assert.Contains(t, out, "sign_to=Capricorn")
	assert.Contains(t, out, "sign_to=Aquarius")
	assert.Contains(t, out, "ingress")
}

func TestEventsStationsJSON(t *testing.T) {
	opts := &RootOptions{Format: "json"}
	out, err := execCommand(t, NewEventsCommand(opts),
		"stations", "Mercury",
		"--from", "2000-01-01T12:00:00Z",
		"--to", "2000-03-31T12:00:00Z")
	require.NoError(t, err)

	var payload []eventPayload
	decodeData(t, out, &payload)
	require.Len(t, payload, 2)
	assert.Equal(t, "retrograde", payload[0].Metadata["station"])
	assert.InDelta(t, 2451590.8496, payload[0].JulianDay, 1e-3)
	assert.Equal(t, "direct", payload[1].Metadata["station"])
}

func TestEventsMissingRange(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	_, err := execCommand(t, NewEventsCommand(opts), "stations", "Mercury")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--from")
}

func TestEventsUnknownBody(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	_, err := execCommand(t, NewEventsCommand(opts),
		"ingresses", "Nibiru",
		"--from", "2000-01-01T12:00:00Z",
		"--to", "2000-02-01T12:00:00Z")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScanCommand(t *testing.T) {
	rulesDir := t.TempDir()
	writeRuleFile(t, rulesDir, "late_capricorn.cue", `
rules: sun_aquarius_entry: {
	name: "Sun In Aquarius"
	conditions: [{
		type:          "longitude"
		body:          "Sun"
		min_longitude: 300
		max_longitude: 330
	}]
}
`)
	cfgPath := filepath.Join(t.TempDir(), "tropical.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("default_sidereal: none\n"), 0o644))

	opts := &RootOptions{Format: "json", Config: cfgPath}
	out, err := execCommand(t, NewScanCommand(opts),
		rulesDir,
		"--from", "2000-01-01T12:00:00Z",
		"--to", "2000-03-01T12:00:00Z",
		"--interval", "5")
	require.NoError(t, err)

	var matches []matchPayload
	decodeData(t, out, &matches)
	require.Len(t, matches, 1)
	assert.Equal(t, "Sun In Aquarius", matches[0].Rule)
	assert.True(t, matches[0].Localized)
	assert.Equal(t, "longitude", matches[0].Trigger)
	// Tropical Sun reaches 300 degrees 20.29 days after epoch.
	assert.InDelta(t, 2451565.2922, matches[0].JulianDay, 1e-3)
	assert.Equal(t, 1, matches[0].Matched)
	assert.Equal(t, 1, matches[0].Total)
}

func TestScanVerboseReportsLoadCount(t *testing.T) {
	rulesDir := t.TempDir()
	writeRuleFile(t, rulesDir, "retro.cue", `
rules: mercury_retro: {
	conditions: [{type: "retrograde", body: "Mercury"}]
}
`)

	opts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewScanCommand(opts)
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{
		rulesDir,
		"--from", "2000-02-10T12:00:00Z",
		"--to", "2000-02-20T12:00:00Z",
		"--interval", "2",
	})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, errBuf.String(), "loaded 1 rules from 1 files")
}

func TestScanBadRulesDir(t *testing.T) {
	opts := &RootOptions{Format: "text"}
	out, err := execCommand(t, NewScanCommand(opts),
		filepath.Join(t.TempDir(), "missing"),
		"--from", "2000-01-01T12:00:00Z",
		"--to", "2000-02-01T12:00:00Z")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "cazimi.cue", cazimiRuleCUE)

	opts := &RootOptions{Format: "text"}
	out, err := execCommand(t, NewValidateCommand(opts), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ok: 1 rules in 1 files")
}

func TestValidateCommandReportsErrors(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "bad.cue", `
rules: bad: {
	conditions: [{type: "retrograde", body: "Spica"}]
}
`)

	opts := &RootOptions{Format: "text"}
	out, err := execCommand(t, NewValidateCommand(opts), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E007")
	assert.Contains(t, out, "errors")
}

func TestParseRange(t *testing.T) {
	t0, t1, err := parseRange("2000-01-01T12:00:00Z", "2000-01-11T12:00:00Z")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, t1.JD()-t0.JD(), 1e-9)

	_, _, err = parseRange("", "2000-01-11T12:00:00Z")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = parseRange("2000-01-11T12:00:00Z", "2000-01-01T12:00:00Z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precede")

	_, _, err = parseRange("not-a-time", "2000-01-01T12:00:00Z")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
