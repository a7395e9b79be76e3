package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"voxtype/internal/domain"
)

func writeRules(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "substitutions.rules")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestEngineApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules string
		limit int
		input string
		want  string
	}{
		{
			name:  "literal and regex",
			rules: "# literal\npull request => PR\n# regex, case-insensitive by default\ns/\\bdeep\\s*gram\\b/Deepgram/g\n",
			limit: 30,
			input: "deep gram pull request",
			want:  "Deepgram PR",
		},
		{
			name:  "iterates until stable",
			rules: "a => b\nb => c\n",
			limit: 5,
			input: "a",
			want:  "c",
		},
		{
			name:  "literal starting with s",
			rules: "solid complaint => SOLID-compliant\n",
			limit: 30,
			input: "solid complaint plan",
			want:  "SOLID-compliant plan",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			engine, err := NewEngine(writeRules(t, tc.rules), tc.limit)
			require.NoError(t, err)

			got, err := engine.Apply(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNewEngineWithoutRulesFile(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", 0)
	require.NoError(t, err)
	got, _ := engine.Apply("unchanged")
	require.Equal(t, "unchanged", got)

	engine, err = NewEngine(filepath.Join(t.TempDir(), "missing.rules"), 0)
	require.NoError(t, err)
	require.Empty(t, engine.user)
}

func TestRuleSetScopes(t *testing.T) {
	t.Parallel()

	set, err := parseRuleSet("a => all\n[formal, custom]\nb => scoped\n[*]\nc => again\n")
	require.NoError(t, err)
	require.Len(t, set, 3)

	require.Len(t, set.forMode(""), 2)
	require.Len(t, set.forMode(domain.CleanupModeCasual), 2)
	require.Len(t, set.forMode(domain.CleanupModeFormal), 3)
	require.Len(t, set.forMode(domain.CleanupModeCustom), 3)

	_, err = parseRuleSet("[shouty]\na => b\n")
	require.ErrorContains(t, err, "unknown cleanup mode")

	_, err = parseRuleSet("[ ]\n")
	require.ErrorContains(t, err, "line 1")
}

func TestEngineApplySkipsScopedRules(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(writeRules(t, "[formal]\nhi => Hello\n"), 0)
	require.NoError(t, err)

	got, err := engine.Apply("hi there")
	require.NoError(t, err)
	require.Equal(t, "hi there", got)
}

func TestRegexRuleExpandsGroups(t *testing.T) {
	t.Parallel()

	rule, err := parseRegexRule(`s/(\w+)@(\w+)/$2 at $1/`)
	require.NoError(t, err)

	output, changed := rule.Apply("mail bob@home and amy@work")
	require.True(t, changed)
	require.Equal(t, "mail home at bob and amy@work", output)
}

func TestLiteralReplacementIsVerbatim(t *testing.T) {
	t.Parallel()

	rule, err := parseLiteralRule("dollar sign => $1")
	require.NoError(t, err)

	output, _ := rule.Apply("a Dollar Sign")
	require.Equal(t, "a $1", output)
}

func TestRegexRuleWithoutGlobalReplacesFirstMatchOnly(t *testing.T) {
	t.Parallel()

	rule, err := parseRegexRule(`s/foo/bar/`)
	require.NoError(t, err)

	output, changed := rule.Apply("foo foo")
	require.True(t, changed)
	require.Equal(t, "bar foo", output)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	_, err := parseRegexRule(`s/foo/bar/x`)
	require.ErrorContains(t, err, "unsupported regex flag")

	_, err = parseRegexRule(`s/unterminated`)
	require.Error(t, err)

	_, err = parseRuleSet("not-a-rule")
	require.ErrorContains(t, err, "line 1")

	_, err = NewEngine(writeRules(t, "ok => fine\n => empty source\n"), 0)
	require.ErrorContains(t, err, "line 2")
}
