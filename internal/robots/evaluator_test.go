package robots

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-visibility-validator/internal/bots"
)

func TestIsBlocked(t *testing.T) {
	tests := []struct {
		name    string
		robots  string
		token   string
		blocked bool
		reason  Reason
	}{
		{"no directives", "", "GPTBot", false, NoRulesFound},
		{"only other bots", "User-agent: CCBot\nDisallow: /", "GPTBot", false, NoRulesFound},
		{"wildcard full disallow", "User-agent: *\nDisallow: /", "GPTBot", true, FullDisallowBlocked},
		{"allow override regardless of path", "User-agent: *\nDisallow: /\nAllow: /public", "GPTBot", false, AllowOverride},
		{"path specific disallow", "User-agent: GPTBot\nDisallow: /private", "GPTBot", false, NoMatchingFullDisallow},
		{"empty disallow", "User-agent: *\nDisallow:", "AnyBot", false, EmptyDisallowAllowsAll},
		{"empty disallow beats full disallow", "User-agent: *\nDisallow: /\nUser-agent: GPTBot\nDisallow:", "GPTBot", false, EmptyDisallowAllowsAll},
		{"explicit full allow", "User-agent: GPTBot\nAllow: /\nDisallow: /tmp", "GPTBot", false, ExplicitFullAllow},
		{"case-insensitive token", "User-agent: gptbot\nDisallow: /", "GPTBot", true, FullDisallowBlocked},
		{"wildcard and specific combine", "User-agent: *\nAllow: /blog\nUser-agent: ClaudeBot\nDisallow: /", "ClaudeBot", false, AllowOverride},
		{"empty allow does not override", "User-agent: *\nDisallow: /\nAllow:", "GPTBot", true, FullDisallowBlocked},
		{"specific group does not leak", "User-agent: GPTBot\nDisallow: /", "ClaudeBot", false, NoRulesFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsBlocked(tt.token, Parse(tt.robots))
			assert.Equal(t, tt.blocked, got.Blocked)
			assert.Equal(t, tt.reason, got.Reason, "got %s", got.Reason)
		})
	}
}

func TestIsBlockedEmptyList(t *testing.T) {
	assert.Equal(t, Result{Blocked: false, Reason: NoRulesFound}, IsBlocked("anything", nil))
	assert.Equal(t, Result{Blocked: false, Reason: NoRulesFound}, IsBlocked("anything", []Directive{}))
}

func TestBatchEvaluate(t *testing.T) {
	list := bots.Default()
	directives := Parse("User-agent: GPTBot\nDisallow: /\n\nUser-agent: CCBot\nDisallow: /\n\nUser-agent: *\nDisallow: /cgi-bin")

	batch := BatchEvaluate(list, directives)

	require.Len(t, batch.Verdicts, len(list))
	assert.Equal(t, len(list), batch.Summary.Total)
	assert.Equal(t, 2, batch.Summary.Blocked)
	assert.Equal(t, batch.Summary.Total, batch.Summary.Allowed+batch.Summary.Blocked)

	byUA := batch.ByUserAgent()
	assert.False(t, byUA["GPTBot"].Allowed)
	assert.Equal(t, FullDisallowBlocked, byUA["GPTBot"].Reason)
	assert.True(t, byUA["ClaudeBot"].Allowed)
	assert.Equal(t, NoMatchingFullDisallow, byUA["ClaudeBot"].Reason)
	assert.Equal(t, "OpenAI", byUA["GPTBot"].Company)
}

func TestBatchEvaluateEmpty(t *testing.T) {
	batch := BatchEvaluate(nil, Parse("User-agent: *\nDisallow: /"))
	assert.Equal(t, Summary{}, batch.Summary)
	assert.Empty(t, batch.Verdicts)
}

func TestDefaultAllow(t *testing.T) {
	list := bots.Default()
	batch := DefaultAllow(list)
	assert.Equal(t, Summary{Total: len(list), Allowed: len(list)}, batch.Summary)
	for _, v := range batch.Verdicts {
		assert.True(t, v.Allowed)
		assert.Equal(t, NoRulesFound, v.Reason)
		assert.Equal(t, "No robots.txt found (default allow)", v.Detail)
	}
}

func TestReasonJSON(t *testing.T) {
	b, err := json.Marshal(Result{Blocked: true, Reason: FullDisallowBlocked})
	require.NoError(t, err)
	assert.JSONEq(t, `{"blocked":true,"reason":"full_disallow_blocked"}`, string(b))

	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"blocked":false,"reason":"allow_override"}`), &r))
	assert.Equal(t, AllowOverride, r.Reason)

	assert.Error(t, json.Unmarshal([]byte(`{"reason":"bogus"}`), &r))
}

func TestDirectiveJSON(t *testing.T) {
	b, err := json.Marshal(Directive{UserAgent: "*", Kind: Allow, Path: "/"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"userAgent":"*","directive":"Allow","path":"/"}`, string(b))
}
