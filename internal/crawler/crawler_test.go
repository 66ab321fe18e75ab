package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *HTTPClient {
	return NewHTTPClient(Options{Timeout: 5 * time.Second, DialTimeout: 2 * time.Second, SizeCap: 1024})
}

func TestFetchHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html><title>x</title></html>"))
	}))
	defer ts.Close()

	rc, final, ct, dur, err := newTestClient().Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<title>x</title>")
	assert.NotEmpty(t, final)
	assert.Equal(t, "text/html", ct)
	assert.Greater(t, dur, time.Duration(0))
}

func TestFetchRejectsNonHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("{}"))
	}))
	defer ts.Close()

	_, _, _, _, err := newTestClient().Fetch(context.Background(), ts.URL)
	assert.ErrorIs(t, err, ErrNonHTML)
}

func TestFetchStatusError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, _, _, _, err := newTestClient().Fetch(context.Background(), ts.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestFetchInvalidURL(t *testing.T) {
	_, _, _, _, err := newTestClient().Fetch(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestFetchText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /"))
		case "/html":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("bin"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()
	c := newTestClient()

	text, err := c.FetchText(context.Background(), ts.URL+"/robots.txt")
	require.NoError(t, err)
	assert.Equal(t, "User-agent: *\nDisallow: /", text)

	_, err = c.FetchText(context.Background(), ts.URL+"/missing")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.StatusCode)

	_, err = c.FetchText(context.Background(), ts.URL+"/html")
	assert.ErrorIs(t, err, ErrNonText)
}

func TestProbeTTFBFollowsRedirects(t *testing.T) {
	var (
		mu     sync.Mutex
		seenUA []string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seenUA = append(seenUA, r.Header.Get("User-Agent"))
		mu.Unlock()
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/step", http.StatusMovedPermanently)
		case "/step":
			http.Redirect(w, r, "/final", http.StatusFound)
		default:
			assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
			_, _ = w.Write([]byte("hello"))
		}
	}))
	defer ts.Close()

	p, err := newTestClient().ProbeTTFB(context.Background(), ts.URL+"/", "GPTBot")
	require.NoError(t, err)
	assert.Equal(t, 200, p.Status)
	assert.Equal(t, 2, p.Redirects)
	assert.Equal(t, ts.URL+"/final", p.FinalURL)
	assert.Greater(t, p.TTFB, time.Duration(0))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"GPTBot", "GPTBot", "GPTBot"}, seenUA)
}

func TestProbeTTFBEmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	p, err := newTestClient().ProbeTTFB(context.Background(), ts.URL, "ClaudeBot")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, p.Status)
	assert.Equal(t, 0, p.Redirects)
}

func TestProbeTTFBRedirectCap(t *testing.T) {
	var (
		mu   sync.Mutex
		hops int
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hops++
		n := hops
		mu.Unlock()
		http.Redirect(w, r, fmt.Sprintf("/hop/%d", n), http.StatusFound)
	}))
	defer ts.Close()

	_, err := newTestClient().ProbeTTFB(context.Background(), ts.URL, "GPTBot")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, defaultMaxRedirects+1, hops)
}

func TestProbeTTFBRedirectWithoutLocationIsFinal(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer ts.Close()

	p, err := newTestClient().ProbeTTFB(context.Background(), ts.URL, "GPTBot")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotModified, p.Status)
}
