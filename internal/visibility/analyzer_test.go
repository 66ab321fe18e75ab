package visibility

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-visibility-validator/internal/cache"
	"ai-visibility-validator/internal/parser"
	"ai-visibility-validator/pkg/logger"
)

type stubFetcher struct {
	html  string
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error) {
	s.calls++
	return io.NopCloser(strings.NewReader(s.html)), rawURL, "text/html", time.Millisecond, nil
}

func TestAnalyze(t *testing.T) {
	f := &stubFetcher{html: `<html><body><div id="app"></div><noscript>Enable JS</noscript></body></html>`}
	a := NewAnalyzer(f, parser.New(), cache.New[Analysis](time.Minute), logger.Discard())

	rendered := `<html><body><div id="app"><h1>Catalog</h1><p>Twenty products in stock</p></div></body></html>`
	res, cached, err := a.Analyze(context.Background(), "https://example.com/", rendered)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 5, res.Summary.EnabledWords)
	assert.Equal(t, 0, res.Summary.DisabledWords)
	assert.Equal(t, 100.0, res.Summary.HiddenPercent)
	assert.Len(t, res.Diff.Lost, 2)
	assert.Equal(t, "https://example.com/", res.JSDisabled.URL)

	_, cached, err = a.Analyze(context.Background(), "https://example.com/", rendered)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, f.calls)
}

func TestAnalyzeRequiresRendering(t *testing.T) {
	a := NewAnalyzer(&stubFetcher{}, parser.New(), nil, logger.Discard())
	_, _, err := a.Analyze(context.Background(), "https://example.com/", "  ")
	assert.ErrorIs(t, err, ErrNoRendering)
}
