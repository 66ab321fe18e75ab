package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-visibility-validator/internal/cli"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CRUX_API_KEY", "")
	cmd := cli.NewRootCmdForTest()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "User-agent: GPTBot\nDisallow: /\n\nUser-agent: *\nDisallow: /private\n")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<html><head><title>Home</title></head><body><h1>Welcome</h1><p>Static paragraph served to everyone</p></body></html>")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "aivis dev")
}

func TestSubcommands(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "metric", "robots", "probe", "visibility", "check", "batch", "mcp"} {
		assert.Contains(t, names, want)
	}
}

func TestMetricClassify(t *testing.T) {
	out, err := run(t, "metric", "ttfb", "250")
	require.NoError(t, err)
	assert.Contains(t, out, "Competitive")
	assert.Contains(t, out, "250ms")
}

func TestMetricJSON(t *testing.T) {
	out, err := run(t, "metric", "cls", "0.3", "--json")
	require.NoError(t, err)

	var g map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	assert.Equal(t, "cls", g["metric"])
	assert.Equal(t, "Poor", g["category"].(map[string]any)["name"])
}

func TestMetricTable(t *testing.T) {
	out, err := run(t, "metric", "inp")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Good")
}

func TestMetricErrors(t *testing.T) {
	_, err := run(t, "metric", "lcp", "1")
	assert.Error(t, err)

	_, err = run(t, "metric", "ttfb", "-1")
	assert.Error(t, err)

	_, err = run(t, "metric", "ttfb", "fast")
	assert.Error(t, err)
}

func TestRobotsFile(t *testing.T) {
	path := writeFile(t, "robots.txt", "User-agent: ClaudeBot\nDisallow: /\n")

	out, err := run(t, "robots", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Blocked 1")
	assert.Contains(t, out, "ClaudeBot")

	out, err = run(t, "robots", "--file", path, "--bot", "ClaudeBot", "--json")
	require.NoError(t, err)
	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["blocked"])
	assert.Equal(t, "full_disallow_blocked", res["reason"])
}

func TestRobotsRemote(t *testing.T) {
	srv := newSite(t)

	out, err := run(t, "robots", srv.URL, "--bot", "GPTBot")
	require.NoError(t, err)
	assert.Contains(t, out, "GPTBot: blocked")

	out, err = run(t, "robots", srv.URL, "--bot", "ClaudeBot")
	require.NoError(t, err)
	assert.Contains(t, out, "ClaudeBot: allowed")
}

func TestRobotsRequiresTarget(t *testing.T) {
	_, err := run(t, "robots")
	assert.Error(t, err)
}

func TestCheckJSON(t *testing.T) {
	srv := newSite(t)

	out, err := run(t, "check", srv.URL, "--json")
	require.NoError(t, err)

	var rep struct {
		URL          string `json:"url"`
		Crawlability struct {
			RobotsExists bool `json:"robotsExists"`
			Summary      struct {
				Total   int `json:"total"`
				Blocked int `json:"blocked"`
			} `json:"summary"`
		} `json:"crawlability"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, srv.URL+"/", rep.URL)
	assert.True(t, rep.Crawlability.RobotsExists)
	assert.Equal(t, 33, rep.Crawlability.Summary.Total)
	assert.Equal(t, 1, rep.Crawlability.Summary.Blocked)
}

func TestCheckText(t *testing.T) {
	srv := newSite(t)

	out, err := run(t, "check", srv.URL, "--probe", "--bots", "anthropic_claudebot")
	require.NoError(t, err)
	assert.Contains(t, out, "AI Visibility Report")
	assert.Contains(t, out, "No CrUX data")
	assert.Contains(t, out, "Bot TTFB probes")
}

func TestCheckHTML(t *testing.T) {
	srv := newSite(t)
	path := filepath.Join(t.TempDir(), "report.html")

	_, err := run(t, "check", srv.URL, "--html", path, "--json")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h1>AI Visibility Report</h1>")
	assert.Contains(t, string(data), "GPTBot")
}

func TestProbe(t *testing.T) {
	srv := newSite(t)

	out, err := run(t, "probe", srv.URL, "--bots", "openai_gptbot,perplexity_bot", "--json")
	require.NoError(t, err)

	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "openai_gptbot", results[0]["botKey"])
	assert.EqualValues(t, 200, results[0]["status"])

	_, err = run(t, "probe", srv.URL, "--bots", "unknown")
	assert.Error(t, err)
}

func TestVisibility(t *testing.T) {
	srv := newSite(t)
	rendered := writeFile(t, "rendered.html", "<html><body><h1>Welcome</h1><p>Static paragraph served to everyone</p>"+
		"<div class=\"reviews\"><p>Reviews loaded by script after hydration</p></div></body></html>")

	out, err := run(t, "visibility", srv.URL, "--rendered", rendered)
	require.NoError(t, err)
	assert.Contains(t, out, "Only visible with JavaScript:")
	assert.Contains(t, out, "Reviews loaded by script after hydration")

	_, err = run(t, "visibility", srv.URL)
	assert.Error(t, err)
}

func TestBatch(t *testing.T) {
	srv := newSite(t)
	input := writeFile(t, "urls.csv", "url\n"+srv.URL+"\nnot a url\n")
	output := filepath.Join(t.TempDir(), "out.ndjson")

	_, err := run(t, "batch", "--input", input, "--output", output, "--concurrency", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, srv.URL, first["url"])
	assert.NotNil(t, first["report"])
	assert.Equal(t, "not a url", second["url"])
	assert.NotEmpty(t, second["error"])
}

func TestBatchRequiresInput(t *testing.T) {
	_, err := run(t, "batch")
	assert.Error(t, err)
}
