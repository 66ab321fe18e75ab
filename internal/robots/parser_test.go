package robots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRobots = `# robots for example.com
User-agent: *
Disallow: /admin
Allow: /admin/public

user-agent: GPTBot
DISALLOW: /
Sitemap: https://example.com/sitemap.xml
Crawl-delay: 10
`

func TestParse(t *testing.T) {
	got := Parse(sampleRobots)
	want := []Directive{
		{UserAgent: "*", Kind: Disallow, Path: "/admin"},
		{UserAgent: "*", Kind: Allow, Path: "/admin/public"},
		{UserAgent: "GPTBot", Kind: Disallow, Path: "/"},
	}
	assert.Equal(t, want, got)
}

func TestParseEmpty(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n\n   \n# only a comment\n"))
}

func TestParseDropsRulesBeforeUserAgent(t *testing.T) {
	got := Parse("Disallow: /\nAllow: /x\nUser-agent: CCBot\nDisallow: /private")
	require.Len(t, got, 1)
	assert.Equal(t, Directive{UserAgent: "CCBot", Kind: Disallow, Path: "/private"}, got[0])
}

func TestParseKeepsEmptyPath(t *testing.T) {
	got := Parse("User-agent: *\nDisallow:")
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Path)
	assert.Equal(t, Disallow, got[0].Kind)
}

func TestParseTrimsAndPreservesValueCase(t *testing.T) {
	got := Parse("  USER-AGENT:   ClaudeBot  \r\n\tAllow:  /Docs/ \r\n")
	require.Len(t, got, 1)
	assert.Equal(t, "ClaudeBot", got[0].UserAgent)
	assert.Equal(t, Allow, got[0].Kind)
	assert.Equal(t, "/Docs/", got[0].Path)
}

func TestParseEmptyUserAgentClearsGroup(t *testing.T) {
	got := Parse("User-agent: GPTBot\nUser-agent:\nDisallow: /")
	assert.Empty(t, got)
}

func TestParseIsDeterministic(t *testing.T) {
	assert.Equal(t, Parse(sampleRobots), Parse(sampleRobots))
}
