package visibility

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ai-visibility-validator/internal/cache"
	"ai-visibility-validator/internal/models"
	"ai-visibility-validator/pkg/logger"
)

var ErrNoRendering = errors.New("rendered html is required")

// Fetcher returns the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error)
}

// Extractor turns HTML into a snapshot.
type Extractor interface {
	Extract(r io.Reader, contentType string) (models.Snapshot, error)
}

// Analyzer builds the JS-disabled snapshot from a raw fetch and compares it
// with a rendering supplied by the caller.
type Analyzer struct {
	fetcher   Fetcher
	extractor Extractor
	cache     *cache.TTL[Analysis]
	log       *logger.Logger
}

func NewAnalyzer(f Fetcher, e Extractor, c *cache.TTL[Analysis], l *logger.Logger) *Analyzer {
	return &Analyzer{fetcher: f, extractor: e, cache: c, log: l}
}

// Analyze compares renderedHTML (the page after scripts ran) with the page
// as served. The second return value reports a cache hit.
func (a *Analyzer) Analyze(ctx context.Context, pageURL, renderedHTML string) (Analysis, bool, error) {
	if strings.TrimSpace(renderedHTML) == "" {
		return Analysis{}, false, ErrNoRendering
	}
	sum := sha256.Sum256([]byte(renderedHTML))
	cacheKey := pageURL + "#" + hex.EncodeToString(sum[:8])
	if a.cache != nil {
		if hit, ok := a.cache.Get(cacheKey); ok {
			return hit, true, nil
		}
	}

	body, finalURL, ct, elapsed, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return Analysis{}, false, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer body.Close()

	disabled, err := a.extractor.Extract(body, ct)
	if err != nil {
		return Analysis{}, false, fmt.Errorf("extract served html: %w", err)
	}
	disabled.URL = finalURL

	enabled, err := a.extractor.Extract(strings.NewReader(renderedHTML), "text/html; charset=utf-8")
	if err != nil {
		return Analysis{}, false, fmt.Errorf("extract rendered html: %w", err)
	}
	enabled.URL = finalURL

	res := Compare(enabled, disabled)
	a.log.Info("visibility analyzed", "url", finalURL, "fetch_ms", elapsed.Milliseconds(),
		"enabled_words", res.Summary.EnabledWords, "disabled_words", res.Summary.DisabledWords)

	if a.cache != nil {
		a.cache.Set(cacheKey, res)
	}
	return res, false, nil
}
