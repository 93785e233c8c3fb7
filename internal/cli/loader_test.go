package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRuleFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const cazimiRuleCUE = `
rules: mercury_cazimi: {
	name: "Mercury Cazimi"
	conditions: [{
		type:  "combustion"
		body:  "Mercury"
		state: "cazimi"
	}]
}
`

func TestLoadRulesValid(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "cazimi.cue", cazimiRuleCUE)

	result, errs := LoadRules(dir)
	require.Empty(t, errs)
	require.NotNil(t, result)
	require.Len(t, result.Rules, 1)
	assert.Equal(t, "Mercury Cazimi", result.Rules[0].Name)
	assert.Len(t, result.Rules[0].Conditions, 1)
	assert.Equal(t, 1, result.FileCount)
}

func TestLoadRulesNameFallsBackToLabel(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "station.cue", `
rules: mercury_station: {
	conditions: [{type: "retrograde", body: "Mercury"}]
}
`)

	result, errs := LoadRules(dir)
	require.Empty(t, errs)
	require.Len(t, result.Rules, 1)
	assert.Equal(t, "mercury_station", result.Rules[0].Name)
}

func TestLoadRulesNormalizesNames(t *testing.T) {
	dir := t.TempDir()
	// "Cafe" with a combining acute accent; NFC folds it to a single rune.
	writeRuleFile(t, dir, "accent.cue", `
rules: accent: {
	name: "Café"
	conditions: [{type: "retrograde", body: "Mars"}]
}
`)

	result, errs := LoadRules(dir)
	require.Empty(t, errs)
	require.Len(t, result.Rules, 1)
	assert.Equal(t, "Café", result.Rules[0].Name)
}

func TestLoadRulesBadRule(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "bad.cue", `
rules: bad_body: {
	name: "Bad Body"
	conditions: [{type: "retrograde", body: "Spica"}]
}
`)

	result, errs := LoadRules(dir)
	require.NotEmpty(t, errs)
	assert.Empty(t, result.Rules)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeBadRule, loadErr.Code)
	assert.Contains(t, loadErr.Message, "bad_body")
}

func TestLoadRulesCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "mixed.cue", `
rules: {
	good: {
		name: "Good"
		conditions: [{type: "retrograde", body: "Mercury"}]
	}
	bad_a: {
		conditions: [{type: "teleport", body: "Sun"}]
	}
	bad_b: {
		conditions: [{type: "retrograde", body: "Nibiru"}]
	}
}
`)

	result, errs := LoadRules(dir)
	require.GreaterOrEqual(t, len(errs), 2)
	for _, e := range errs {
		var loadErr *LoadError
		require.ErrorAs(t, e, &loadErr)
		assert.Equal(t, ErrCodeBadRule, loadErr.Code)
	}
	require.Len(t, result.Rules, 1)
	assert.Equal(t, "Good", result.Rules[0].Name)
}

func TestLoadRulesMissingDir(t *testing.T) {
	_, errs := LoadRules(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
	assert.Contains(t, loadErr.Message, "not found")
}

func TestLoadRulesPathIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "rules.cue")
	require.NoError(t, os.WriteFile(file, []byte("rules: {}"), 0o644))

	_, errs := LoadRules(file)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadRulesEmptyDir(t *testing.T) {
	_, errs := LoadRules(t.TempDir())
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoadRulesNoRulesStruct(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "other.cue", "settings: {interval: 5}\n")

	_, errs := LoadRules(dir)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeGeneric, loadErr.Code)
	assert.Contains(t, loadErr.Message, "rules")
}

func TestLoadRulesMalformedCUE(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "broken.cue", "rules: {\n")

	_, errs := LoadRules(dir)
	require.NotEmpty(t, errs)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Contains(t, []string{ErrCodeLoadFailed, ErrCodeBuildFailed}, loadErr.Code)
}

func TestLoadRulesDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, "typed.cue", `
rules: numeric_name: {
	name: 42
	conditions: [{type: "retrograde", body: "Mars"}]
}
`)

	_, errs := LoadRules(dir)
	require.NotEmpty(t, errs)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeBuildFailed, loadErr.Code)
	assert.Contains(t, loadErr.Message, "numeric_name")
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeRuleFile(t, dir, "a.cue", "rules: {}\n")
	writeRuleFile(t, sub, "b.cue", "rules: {}\n")
	writeRuleFile(t, dir, "notes.txt", "not a rule file\n")

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, ".cue", filepath.Ext(f))
	}
}
