// Package probe measures how fast a site answers when it is requested under
// AI crawler user-agents.
package probe

import (
	"context"
	"sync"
	"time"

	"ai-visibility-validator/internal/bots"
	"ai-visibility-validator/internal/cache"
	"ai-visibility-validator/internal/classifier"
	"ai-visibility-validator/internal/crawler"
	"ai-visibility-validator/pkg/logger"
)

// TTFBProber performs one measurement.
type TTFBProber interface {
	ProbeTTFB(ctx context.Context, rawURL, userAgent string) (crawler.Probe, error)
}

// Result is the measurement for one bot profile.
type Result struct {
	BotKey    string `json:"botKey"`
	Company   string `json:"company"`
	Label     string `json:"label"`
	TTFBMs    int64  `json:"ttfbMs,omitempty"`
	Status    int    `json:"status,omitempty"`
	FinalURL  string `json:"finalUrl,omitempty"`
	Redirects int    `json:"redirects"`
	Grade     string `json:"grade,omitempty"`
	Category  string `json:"category,omitempty"`
	Cached    bool   `json:"cached"`
	Error     string `json:"error,omitempty"`
}

// OK reports whether the probe produced a measurement.
func (r Result) OK() bool { return r.Error == "" }

// Prober runs probes for several profiles with bounded concurrency.
type Prober struct {
	client      TTFBProber
	cache       *cache.TTL[Result]
	concurrency int
	timeout     time.Duration
	log         *logger.Logger
}

// New returns a Prober. A nil cache disables caching; concurrency below 1
// means 1. timeout bounds each profile's probe including redirects.
func New(client TTFBProber, c *cache.TTL[Result], concurrency int, timeout time.Duration, l *logger.Logger) *Prober {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Prober{client: client, cache: c, concurrency: concurrency, timeout: timeout, log: l}
}

// Run probes url once per profile. Results keep the order of profiles.
// Failures are reported per result and never cached.
func (p *Prober) Run(ctx context.Context, url string, profiles []bots.Profile) []Result {
	results := make([]Result, len(profiles))

	// bounded concurrency
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, prof := range profiles {
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(i int, prof bots.Profile) {
			defer func() { <-sem; wg.Done() }()
			results[i] = p.one(ctx, url, prof)
		}(i, prof)
	}
	wg.Wait()
	return results
}

func (p *Prober) one(ctx context.Context, url string, prof bots.Profile) Result {
	key := prof.Key + ":" + url
	if p.cache != nil {
		if hit, ok := p.cache.Get(key); ok {
			hit.Cached = true
			return hit
		}
	}

	res := Result{BotKey: prof.Key, Company: prof.Company, Label: prof.Label}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	m, err := p.client.ProbeTTFB(ctx, url, prof.UserAgent)
	if err != nil {
		res.Error = err.Error()
		p.log.Warn("probe failed", "bot", prof.Key, "url", url, "err", err)
		return res
	}

	res.TTFBMs = m.TTFB.Milliseconds()
	res.Status = m.Status
	res.FinalURL = m.FinalURL
	res.Redirects = m.Redirects
	if cat, err := classifier.Classify(classifier.TTFB, float64(res.TTFBMs)); err == nil {
		res.Grade = cat.Grade
		res.Category = cat.Name
	}
	p.log.Debug("probe done", "bot", prof.Key, "url", url, "ttfb_ms", res.TTFBMs, "status", res.Status)

	if p.cache != nil {
		p.cache.Set(key, res)
	}
	return res
}
