package crux

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `{
  "record": {
    "key": {"url": "https://example.com/"},
    "metrics": {
      "experimental_time_to_first_byte": {"percentiles": {"p75": 812}},
      "cumulative_layout_shift": {"percentiles": {"p75": "0.12"}},
      "largest_contentful_paint": {"percentiles": {"p75": 2100}}
    }
  }
}`

func TestMetrics(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "k123", r.Header.Get("X-Goog-Api-Key"))
		assert.Empty(t, r.URL.RawQuery)

		var q Query
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "https://example.com/", q.URL)
		assert.Equal(t, "DESKTOP", q.FormFactor)
		assert.Equal(t, DefaultMetrics, q.Metrics)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleRecord))
	}))
	defer ts.Close()

	c := New("k123", ts.URL, 5*time.Second)
	m, err := c.Metrics(context.Background(), Query{URL: "https://example.com/"})
	require.NoError(t, err)

	require.NotNil(t, m.TTFB)
	assert.Equal(t, 812.0, *m.TTFB)
	require.NotNil(t, m.CLS)
	assert.Equal(t, 0.12, *m.CLS)
	assert.Nil(t, m.INP)
	assert.False(t, m.Empty())
}

func TestQueryRecordAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"chrome ux report data not found"}}`))
	}))
	defer ts.Close()

	_, err := New("k", ts.URL, time.Second).QueryRecord(context.Background(), Query{Origin: "https://tiny.example"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, string(apiErr.Body), "not found")
}

func TestMissingAPIKey(t *testing.T) {
	_, err := New("", "", time.Second).Metrics(context.Background(), Query{URL: "https://example.com/"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestExtractMetricsEmptyRecord(t *testing.T) {
	assert.True(t, ExtractMetrics(Record{}).Empty())
}

func closedEndpoint(t *testing.T) string {
	t.Helper()
	ts := httptest.NewServer(http.NotFoundHandler())
	endpoint := ts.URL + "/v1/records:queryRecord"
	ts.Close()
	return endpoint
}

func TestTransportErrorOmitsAPIKey(t *testing.T) {
	c := New("SECRET-KEY-123", closedEndpoint(t), time.Second)

	_, _, err := c.Raw(context.Background(), Query{URL: "https://example.com/"})
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "SECRET-KEY-123"), err.Error())
	assert.Contains(t, err.Error(), "crux api")

	_, err = c.Metrics(context.Background(), Query{Origin: "https://example.com"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
}

func TestTransportErrorKeepsContextCause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := New("k", closedEndpoint(t), time.Second).Raw(ctx, Query{URL: "https://example.com/"})
	assert.ErrorIs(t, err, context.Canceled)
}
