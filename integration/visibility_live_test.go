//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"ai-visibility-validator/internal/bots"
	"ai-visibility-validator/internal/cache"
	"ai-visibility-validator/internal/crawler"
	"ai-visibility-validator/internal/parser"
	"ai-visibility-validator/internal/probe"
	"ai-visibility-validator/internal/report"
	"ai-visibility-validator/pkg/logger"
)

func TestLiveCrawlability(t *testing.T) {
	client := crawler.NewHTTPClient(crawler.Options{Timeout: 25 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	c, err := report.CheckCrawlability(ctx, client, "https://www.nytimes.com/", bots.Default())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !c.RobotsFound {
		t.Skipf("skipping: robots.txt unavailable: %s", c.FetchError)
	}
	if c.Summary.Total != 33 {
		t.Errorf("expected 33 verdicts, got %d", c.Summary.Total)
	}
	if len(c.Directives) == 0 {
		t.Errorf("expected directives in a live robots.txt")
	}
}

func TestLiveProbe(t *testing.T) {
	client := crawler.NewHTTPClient(crawler.Options{})
	p := probe.New(client, cache.New[probe.Result](time.Minute), 2, 10*time.Second, logger.Discard())

	results := p.Run(context.Background(), "https://example.com/", bots.DefaultProfiles()[:2])
	for _, r := range results {
		if !r.OK() {
			t.Skipf("skipping: probe failed due to network: %s", r.Error)
		}
		if r.TTFBMs <= 0 || r.Grade == "" {
			t.Errorf("%s: expected a graded measurement, got %+v", r.BotKey, r)
		}
	}
}

func TestLiveExtract(t *testing.T) {
	client := crawler.NewHTTPClient(crawler.Options{Timeout: 25 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	body, _, ct, _, err := client.Fetch(ctx, "https://example.com/")
	if err != nil {
		t.Skipf("skipping: fetch failed: %v", err)
	}
	defer body.Close()

	snap, err := parser.New().Extract(body, ct)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if snap.Title == "" || snap.TotalWords == 0 {
		t.Errorf("expected title and visible words, got %+v", snap)
	}
}
