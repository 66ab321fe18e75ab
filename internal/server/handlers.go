package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"ai-visibility-validator/internal/crawler"
	"ai-visibility-validator/internal/crux"
	"ai-visibility-validator/internal/probe"
	"ai-visibility-validator/internal/report"
	"ai-visibility-validator/internal/visibility"
)

type probeReq struct {
	URL     string   `json:"url"`
	BotKeys []string `json:"botKeys"`
}

type probeResp struct {
	Success     bool           `json:"success"`
	URL         string         `json:"url"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Results     []probe.Result `json:"results"`
}

type analyzeReq struct {
	URL          string `json:"url"`
	RenderedHTML string `json:"renderedHtml"`
}

type analyzeResp struct {
	Success     bool      `json:"success"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generatedAt"`
	Cached      bool      `json:"cached"`
	visibility.Analysis
}

type cruxReq struct {
	Action     string   `json:"action"`
	URL        string   `json:"url"`
	Origin     string   `json:"origin"`
	FormFactor string   `json:"formFactor"`
	Metrics    []string `json:"metrics"`
	BotKeys    []string `json:"botKeys"`
}

type crawlabilityReq struct {
	URL string `json:"url"`
}

type crawlabilityResp struct {
	Success     bool      `json:"success"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generatedAt"`
	report.Crawlability
}

type checkReq struct {
	URL        string   `json:"url"`
	FormFactor string   `json:"formFactor"`
	Probe      bool     `json:"probe"`
	BotKeys    []string `json:"botKeys"`
}

func (s *Server) timeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.deps.Timeout)
}

func unavailable(w http.ResponseWriter) {
	writeFailure(w, http.StatusServiceUnavailable, "Service not configured.")
}

// POST /probe  { "url": "...", "botKeys": ["openai_gptbot"] }
func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var req probeReq
	if !decode(w, r, &req) {
		return
	}
	s.probe(w, r, req.URL, req.BotKeys)
}

func (s *Server) probe(w http.ResponseWriter, r *http.Request, rawURL string, botKeys []string) {
	if s.deps.Prober == nil {
		unavailable(w)
		return
	}
	pageURL, err := crawler.NormalizeURL(rawURL)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid URL.")
		return
	}
	profiles := s.deps.Catalog.Select(botKeys)
	if len(profiles) == 0 {
		writeFailure(w, http.StatusBadRequest, "No valid bot keys provided.")
		return
	}

	ctx, cancel := s.timeout(r)
	defer cancel()
	results := s.deps.Prober.Run(ctx, pageURL, profiles)

	writeJSON(w, http.StatusOK, probeResp{
		Success:     true,
		URL:         pageURL,
		GeneratedAt: s.now().UTC(),
		Results:     results,
	})
}

// POST /analyze  { "url": "...", "renderedHtml": "<html>..." }
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.deps.Analyzer == nil {
		unavailable(w)
		return
	}
	var req analyzeReq
	if !decode(w, r, &req) {
		return
	}
	pageURL, err := crawler.NormalizeURL(req.URL)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid URL.")
		return
	}

	ctx, cancel := s.timeout(r)
	defer cancel()
	res, cached, err := s.deps.Analyzer.Analyze(ctx, pageURL, req.RenderedHTML)
	switch {
	case errors.Is(err, visibility.ErrNoRendering):
		writeFailure(w, http.StatusBadRequest, "renderedHtml is required.")
		return
	case errors.Is(err, crawler.ErrNonHTML):
		writeFailure(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.log.Warn("analysis failed", "url", pageURL, "err", err)
		writeFailure(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analyzeResp{
		Success:     true,
		URL:         pageURL,
		GeneratedAt: s.now().UTC(),
		Cached:      cached,
		Analysis:    res,
	})
}

// POST /crux  { "action": "botProbe" | "fetchRobotsTxt" | "", ... }
func (s *Server) handleCrux(w http.ResponseWriter, r *http.Request) {
	var req cruxReq
	if !decode(w, r, &req) {
		return
	}

	switch req.Action {
	case "botProbe":
		if req.URL == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "URL is required for bot probe"})
			return
		}
		if req.BotKeys == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "botKeys array is required"})
			return
		}
		s.probe(w, r, req.URL, req.BotKeys)
	case "fetchRobotsTxt":
		s.fetchRobots(w, r, req.URL)
	default:
		s.cruxQuery(w, r, req)
	}
}

func (s *Server) fetchRobots(w http.ResponseWriter, r *http.Request, rawURL string) {
	if rawURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "URL is required for robots.txt fetch"})
		return
	}
	if s.deps.Robots == nil {
		unavailable(w)
		return
	}
	target, err := crawler.NormalizeURL(rawURL)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid URL.")
		return
	}

	ctx, cancel := s.timeout(r)
	defer cancel()
	text, err := s.deps.Robots.FetchText(ctx, target)
	if err != nil {
		var se *crawler.StatusError
		if errors.As(err, &se) {
			writeJSON(w, se.StatusCode, map[string]any{"error": "Failed to fetch robots.txt", "status": se.StatusCode})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to fetch robots.txt", "details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "text": text})
}

func (s *Server) cruxQuery(w http.ResponseWriter, r *http.Request, req cruxReq) {
	if req.URL == "" && req.Origin == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "URL is required"})
		return
	}
	if s.deps.Crux == nil {
		unavailable(w)
		return
	}

	ctx, cancel := s.timeout(r)
	defer cancel()
	body, status, err := s.deps.Crux.Raw(ctx, crux.Query{
		URL:        req.URL,
		Origin:     req.Origin,
		FormFactor: req.FormFactor,
		Metrics:    req.Metrics,
	})
	if errors.Is(err, crux.ErrMissingAPIKey) {
		unavailable(w)
		return
	}
	if err != nil {
		s.log.Error("crux query failed", "url", req.URL, "origin", req.Origin, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error", "details": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// POST /crawlability  { "url": "..." }
func (s *Server) handleCrawlability(w http.ResponseWriter, r *http.Request) {
	if s.deps.Robots == nil {
		unavailable(w)
		return
	}
	var req crawlabilityReq
	if !decode(w, r, &req) {
		return
	}
	pageURL, err := crawler.NormalizeURL(req.URL)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid URL.")
		return
	}

	ctx, cancel := s.timeout(r)
	defer cancel()
	c, err := report.CheckCrawlability(ctx, s.deps.Robots, pageURL, s.deps.Catalog.Bots)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, crawlabilityResp{
		Success:      true,
		URL:          pageURL,
		GeneratedAt:  s.now().UTC(),
		Crawlability: c,
	})
}

// POST /check  { "url": "...", "formFactor": "PHONE", "probe": true }
// ?format=html answers with a rendered page instead of JSON.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if s.deps.Reports == nil {
		unavailable(w)
		return
	}
	var req checkReq
	if !decode(w, r, &req) {
		return
	}

	ctx, cancel := s.timeout(r)
	defer cancel()
	rep, err := s.deps.Reports.Check(ctx, req.URL, report.Options{
		FormFactor: req.FormFactor,
		Probe:      req.Probe,
		BotKeys:    req.BotKeys,
	})
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid URL.")
		return
	}
	if r.URL.Query().Get("format") == "html" {
		var buf bytes.Buffer
		if err := report.RenderHTML(&buf, rep); err != nil {
			s.log.Error("render report", "id", rep.ID, "err", err)
			writeFailure(w, http.StatusInternalServerError, "Report rendering failed.")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
