package crawler

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNonHTML          = errors.New("non-html content")
	ErrNonText          = errors.New("non-text content")
	ErrTooManyRedirects = errors.New("too many redirects")
)

// StatusError reports an upstream response outside the accepted range.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http status %d", e.URL, e.StatusCode)
}

// Options tunes an HTTPClient. Zero fields take the defaults below.
type Options struct {
	Timeout      time.Duration // whole-request timeout for Fetch and FetchText
	DialTimeout  time.Duration
	SizeCap      int64
	UserAgent    string
	MaxRedirects int           // redirect hops ProbeTTFB follows
	ProbeTimeout time.Duration // response-header timeout per probe hop
}

const (
	defaultUserAgent    = "AI-Visibility-Validator/1.0"
	defaultMaxRedirects = 5
	acceptHTML          = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

type HTTPClient struct {
	client       *http.Client
	probe        *http.Client
	sizeCap      int64
	userAgent    string
	maxRedirects int
}

func NewHTTPClient(opts Options) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}
	if opts.SizeCap <= 0 {
		opts.SizeCap = 5 << 20
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = defaultMaxRedirects
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   opts.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	// each probe opens its own connection so TTFB includes connect and TLS time
	probeTransport := transport.Clone()
	probeTransport.DisableKeepAlives = true
	probeTransport.ResponseHeaderTimeout = opts.ProbeTimeout

	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		probe: &http.Client{
			Transport: probeTransport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		sizeCap:      opts.SizeCap,
		userAgent:    opts.UserAgent,
		maxRedirects: opts.MaxRedirects,
	}
}

// Fetch GETs an HTML page and returns its (size-capped) body, the final URL
// after redirects, the content type and the elapsed time.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, "", "", 0, ErrInvalidURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", "", 0, err
	}
	req.Header.Set("Accept", acceptHTML)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", "", 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", "", 0, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	var body io.ReadCloser = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, "", "", 0, err
		}
		body = gz
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.Contains(mediaType, "text/html") && !strings.Contains(mediaType, "application/xhtml+xml") && mediaType != "" {
		// still allow if empty (some servers omit), otherwise reject non-html
		resp.Body.Close()
		return nil, "", "", 0, ErrNonHTML
	}

	finalURL := resp.Request.URL.String()
	elapsed := time.Since(start)
	return readCloser{Reader: io.LimitReader(body, h.sizeCap), Closer: resp.Body}, finalURL, contentType, elapsed, nil
}

// FetchText GETs a plain-text resource such as robots.txt. Anything but a
// 200 is a *StatusError.
func (h *HTTPClient) FetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.HasPrefix(ct, "text/") {
		return "", ErrNonText
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, h.sizeCap))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Probe is the outcome of a single TTFB measurement.
type Probe struct {
	TTFB      time.Duration
	Status    int
	FinalURL  string
	Redirects int
}

// ProbeTTFB requests rawURL as userAgent, following redirects by hand, and
// measures the time from the first request until the first body byte of the
// final response arrives.
func (h *HTTPClient) ProbeTTFB(ctx context.Context, rawURL, userAgent string) (Probe, error) {
	start := time.Now()
	current := rawURL
	redirects := 0

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current, nil)
		if err != nil {
			return Probe{}, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", acceptHTML)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Cache-Control", "no-cache")
		req.Header.Set("Pragma", "no-cache")

		resp, err := h.probe.Do(req)
		if err != nil {
			return Probe{}, err
		}

		location := resp.Header.Get("Location")
		if resp.StatusCode >= 300 && resp.StatusCode < 400 && location != "" {
			resp.Body.Close()
			redirects++
			if redirects > h.maxRedirects {
				return Probe{}, fmt.Errorf("%w (>%d)", ErrTooManyRedirects, h.maxRedirects)
			}
			next, err := resp.Request.URL.Parse(location)
			if err != nil {
				return Probe{}, fmt.Errorf("bad redirect location %q: %w", location, err)
			}
			current = next.String()
			continue
		}

		var first [1]byte
		_, err = io.ReadAtLeast(resp.Body, first[:], 1)
		ttfb := time.Since(start)
		resp.Body.Close()
		if err != nil && !errors.Is(err, io.EOF) {
			return Probe{}, err
		}
		return Probe{TTFB: ttfb, Status: resp.StatusCode, FinalURL: current, Redirects: redirects}, nil
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}
