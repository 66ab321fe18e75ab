// Package server exposes the validator over HTTP: the bot probe, the
// content visibility analyzer, the CrUX proxy, crawlability and full reports.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ai-visibility-validator/internal/bots"
	"ai-visibility-validator/internal/crux"
	"ai-visibility-validator/internal/ratelimit"
	"ai-visibility-validator/internal/report"
	"ai-visibility-validator/internal/visibility"
	"ai-visibility-validator/pkg/logger"
)

const maxRequestBody = 200 << 10 // 200 KB

// Analyzer compares a rendered page with the page as served.
type Analyzer interface {
	Analyze(ctx context.Context, pageURL, renderedHTML string) (visibility.Analysis, bool, error)
}

// CruxProxy forwards a query to the UX report API unchanged.
type CruxProxy interface {
	Raw(ctx context.Context, q crux.Query) ([]byte, int, error)
}

// Checker builds full reports.
type Checker interface {
	Check(ctx context.Context, rawURL string, opts report.Options) (*report.Report, error)
}

// Deps are the collaborators behind the endpoints. A nil collaborator makes
// its endpoints answer 503.
type Deps struct {
	Prober   report.ProbeRunner
	Analyzer Analyzer
	Crux     CruxProxy
	Robots   report.TextFetcher
	Reports  Checker
	Catalog  bots.Catalog
	Log      *logger.Logger
	Limiter  *ratelimit.Store
	Now      func() time.Time
	Timeout  time.Duration
}

// Server routes requests to the collaborators.
type Server struct {
	deps    Deps
	origins map[string]bool
	log     *logger.Logger
	now     func() time.Time
}

// New returns a Server. allowedOrigins are echoed back in CORS responses;
// any other origin gets "*".
func New(deps Deps, allowedOrigins []string) *Server {
	s := &Server{deps: deps, origins: make(map[string]bool, len(allowedOrigins)), log: deps.Log, now: deps.Now}
	for _, o := range allowedOrigins {
		s.origins[o] = true
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.deps.Timeout <= 0 {
		s.deps.Timeout = 60 * time.Second
	}
	return s
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.logRequest)
	r.Use(s.cors)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/probe", s.handleProbe)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/crux", s.handleCrux)
		r.Post("/crawlability", s.handleCrawlability)
		r.Post("/check", s.handleCheck)
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}

// decode reads a JSON body of at most maxRequestBody bytes into v and
// answers the client itself when that fails.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		writeFailure(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		return false
	}
	writeFailure(w, http.StatusBadRequest, "Invalid request body.")
	return false
}
