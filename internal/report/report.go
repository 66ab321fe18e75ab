// Package report assembles metrics, crawlability and probe results into a
// single visibility report.
package report

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"ai-visibility-validator/internal/bots"
	"ai-visibility-validator/internal/classifier"
	"ai-visibility-validator/internal/crawler"
	"ai-visibility-validator/internal/crux"
	"ai-visibility-validator/internal/models"
	"ai-visibility-validator/internal/probe"
	"ai-visibility-validator/pkg/logger"
)

// MetricsSource returns p75 field metrics for a page or origin.
type MetricsSource interface {
	Metrics(ctx context.Context, q crux.Query) (models.MetricValues, error)
}

// ProbeRunner measures TTFB per bot profile.
type ProbeRunner interface {
	Run(ctx context.Context, url string, profiles []bots.Profile) []probe.Result
}

// Grade is a metric sample with its category.
type Grade struct {
	Kind     classifier.Kind     `json:"metric"`
	Value    float64             `json:"value"`
	Category classifier.Category `json:"category"`
}

// MetricSet is the graded CrUX data for a page or an origin.
type MetricSet struct {
	URL    string              `json:"url"`
	Values models.MetricValues `json:"metrics"`
	Grades []Grade             `json:"grades"`
	Error  string              `json:"error,omitempty"`
}

// Grade returns the grade for kind, if the set has one.
func (m MetricSet) Grade(kind classifier.Kind) (Grade, bool) {
	for _, g := range m.Grades {
		if g.Kind == kind {
			return g, true
		}
	}
	return Grade{}, false
}

// Report is the complete visibility check of one URL.
type Report struct {
	ID            string         `json:"id"`
	URL           string         `json:"url"`
	Origin        string         `json:"origin"`
	Domain        string         `json:"domain,omitempty"`
	GeneratedAt   time.Time      `json:"generatedAt"`
	Page          MetricSet      `json:"page"`
	OriginMetrics MetricSet      `json:"originMetrics"`
	Crawlability  Crawlability   `json:"crawlability"`
	Probes        []probe.Result `json:"probes,omitempty"`
}

// HasMetrics reports whether CrUX returned anything for page or origin.
func (r *Report) HasMetrics() bool {
	return !r.Page.Values.Empty() || !r.OriginMetrics.Values.Empty()
}

// Options select the optional parts of a check.
type Options struct {
	FormFactor string
	Probe      bool
	BotKeys    []string
}

// Service runs checks. Metrics and Prober may be nil, in which case those
// sections are left empty.
type Service struct {
	Metrics MetricsSource
	Robots  TextFetcher
	Prober  ProbeRunner
	Catalog bots.Catalog
	Log     *logger.Logger
	Now     func() time.Time
}

// Check normalises rawURL and builds a report. Only an invalid URL is an
// error; every collaborator failure is recorded in the report instead.
func (s *Service) Check(ctx context.Context, rawURL string, opts Options) (*Report, error) {
	pageURL, err := crawler.NormalizeURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", rawURL, err)
	}
	origin, err := crawler.Origin(pageURL)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	rep := &Report{
		ID:            uuid.NewString(),
		URL:           pageURL,
		Origin:        origin,
		Domain:        registrableDomain(pageURL),
		GeneratedAt:   now().UTC(),
		Page:          MetricSet{URL: pageURL},
		OriginMetrics: MetricSet{URL: origin},
	}

	if s.Metrics != nil {
		rep.Page = s.metricSet(ctx, crux.Query{URL: pageURL, FormFactor: opts.FormFactor})
		rep.OriginMetrics = s.metricSet(ctx, crux.Query{Origin: origin, FormFactor: opts.FormFactor})
	}

	rep.Crawlability, err = CheckCrawlability(ctx, s.Robots, origin, s.Catalog.Bots)
	if err != nil {
		return nil, err
	}
	if !rep.Crawlability.RobotsFound {
		s.logger().Info("robots.txt unavailable, default allow", "url", rep.Crawlability.RobotsURL, "err", rep.Crawlability.FetchError)
	}

	if opts.Probe && s.Prober != nil {
		rep.Probes = s.Prober.Run(ctx, pageURL, s.Catalog.Select(opts.BotKeys))
	}

	s.logger().Info("check complete", "id", rep.ID, "url", pageURL,
		"bots_blocked", rep.Crawlability.Summary.Blocked, "has_metrics", rep.HasMetrics())
	return rep, nil
}

// registrableDomain is the eTLD+1 of pageURL's host, or "" for IPs and
// single-label hosts.
func registrableDomain(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return ""
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return d
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Discard()
	}
	return s.Log
}

func (s *Service) metricSet(ctx context.Context, q crux.Query) MetricSet {
	set := MetricSet{URL: q.URL}
	if q.Origin != "" {
		set.URL = q.Origin
	}
	values, err := s.Metrics.Metrics(ctx, q)
	if err != nil {
		set.Error = err.Error()
		s.logger().Warn("crux query failed", "url", set.URL, "err", err)
		return set
	}
	set.Values = values
	set.Grades, err = GradeAll(values)
	if err != nil {
		set.Error = err.Error()
	}
	return set
}

// GradeAll classifies every present metric. Invalid samples are skipped and
// the first such error is returned alongside the valid grades.
func GradeAll(v models.MetricValues) ([]Grade, error) {
	var (
		out      []Grade
		firstErr error
	)
	samples := map[classifier.Kind]*float64{classifier.TTFB: v.TTFB, classifier.CLS: v.CLS, classifier.INP: v.INP}
	for _, kind := range classifier.Kinds {
		val := samples[kind]
		if val == nil {
			continue
		}
		cat, err := classifier.Classify(kind, *val)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, Grade{Kind: kind, Value: *val, Category: cat})
	}
	return out, firstErr
}
