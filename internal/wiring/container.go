// Package wiring builds the validator's collaborators from configuration.
package wiring

import (
	"sync"

	"ai-visibility-validator/internal/cache"
	"ai-visibility-validator/internal/config"
	"ai-visibility-validator/internal/crawler"
	"ai-visibility-validator/internal/crux"
	"ai-visibility-validator/internal/parser"
	"ai-visibility-validator/internal/probe"
	"ai-visibility-validator/internal/ratelimit"
	"ai-visibility-validator/internal/report"
	"ai-visibility-validator/internal/server"
	"ai-visibility-validator/internal/visibility"
	"ai-visibility-validator/pkg/logger"
)

// Container owns every collaborator shared by the server and the CLI.
type Container struct {
	Config   config.Config
	Log      *logger.Logger
	HTTP     *crawler.HTTPClient
	Parser   *parser.Parser
	Prober   *probe.Prober
	Analyzer *visibility.Analyzer
	Crux     *crux.Client
	Reports  *report.Service

	mu          sync.RWMutex
	limiter     *ratelimit.Store
	limiterOnce sync.Once
	closeOnce   sync.Once
}

// New constructs the collaborators. Without a CrUX API key reports carry
// no field metrics.
func New(cfg config.Config, log *logger.Logger) *Container {
	httpClient := crawler.NewHTTPClient(crawler.Options{
		Timeout:      cfg.RequestTimeout,
		DialTimeout:  cfg.DialTimeout,
		SizeCap:      cfg.MaxBodyBytes,
		UserAgent:    cfg.UserAgent,
		MaxRedirects: cfg.MaxRedirects,
		ProbeTimeout: cfg.ProbeTimeout,
	})
	p := parser.New()
	prober := probe.New(httpClient, cache.New[probe.Result](cfg.ProbeCacheTTL), cfg.ProbeConcurrency, cfg.ProbeTimeout, log.With("component", "probe"))
	analyzer := visibility.NewAnalyzer(httpClient, p, cache.New[visibility.Analysis](cfg.ContentCacheTTL), log.With("component", "visibility"))
	cruxClient := crux.New(cfg.CruxAPIKey, cfg.CruxEndpoint, cfg.RequestTimeout)

	reports := &report.Service{
		Robots:  httpClient,
		Prober:  prober,
		Catalog: cfg.Catalog,
		Log:     log.With("component", "report"),
	}
	if cfg.CruxAPIKey != "" {
		reports.Metrics = cruxClient
	} else {
		log.Warn("no crux api key configured, field metrics disabled")
	}

	return &Container{
		Config:   cfg,
		Log:      log,
		HTTP:     httpClient,
		Parser:   p,
		Prober:   prober,
		Analyzer: analyzer,
		Crux:     cruxClient,
		Reports:  reports,
	}
}

// Limiter returns the per-client rate limiter, starting its eviction loop on
// first use. A non-positive rate disables limiting.
func (c *Container) Limiter() *ratelimit.Store {
	c.limiterOnce.Do(func() {
		if c.Config.RateLimit > 0 {
			c.limiter = ratelimit.New(c.Config.RateLimit, c.Config.RateBurst, c.Config.RateLimiterTTL)
			c.limiter.Start()
		}
	})
	return c.limiter
}

// Reload applies the bot catalogue and CORS origins of cfg. Other settings
// take effect on restart.
func (c *Container) Reload(cfg config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Config.Catalog = cfg.Catalog
	c.Config.AllowedOrigins = cfg.AllowedOrigins
	reports := *c.Reports
	reports.Catalog = cfg.Catalog
	c.Reports = &reports
	c.Log.Info("catalogue reloaded", "bots", len(cfg.Catalog.Bots), "probe_profiles", len(cfg.Catalog.Profiles))
}

// Server returns the HTTP front end over the container's collaborators.
func (c *Container) Server() *server.Server {
	limiter := c.Limiter()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return server.New(server.Deps{
		Prober:   c.Prober,
		Analyzer: c.Analyzer,
		Crux:     c.Crux,
		Robots:   c.HTTP,
		Reports:  c.Reports,
		Catalog:  c.Config.Catalog,
		Log:      c.Log.With("component", "http"),
		Limiter:  limiter,
		Timeout:  c.Config.WriteTimeout,
	}, c.Config.AllowedOrigins)
}

// Close releases background resources. It is idempotent.
func (c *Container) Close() {
	c.closeOnce.Do(func() {
		if c.limiter != nil {
			c.limiter.Stop()
		}
	})
}
