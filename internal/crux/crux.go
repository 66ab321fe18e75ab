// Package crux queries the Chrome UX Report API for field performance data.
package crux

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ai-visibility-validator/internal/models"
)

const DefaultEndpoint = "https://chromeuxreport.googleapis.com/v1/records:queryRecord"

const (
	MetricTTFB = "experimental_time_to_first_byte"
	MetricCLS  = "cumulative_layout_shift"
	MetricINP  = "interaction_to_next_paint"
)

// DefaultMetrics are requested when a query names none.
var DefaultMetrics = []string{MetricTTFB, MetricCLS, MetricINP}

var ErrMissingAPIKey = errors.New("crux api key not configured")

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("crux api: http status %d", e.StatusCode)
}

// Query selects a record. Exactly one of URL or Origin should be set.
type Query struct {
	URL        string   `json:"url,omitempty"`
	Origin     string   `json:"origin,omitempty"`
	FormFactor string   `json:"formFactor,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
}

// Record is the subset of the API response the validator reads.
type Record struct {
	Record struct {
		Key     map[string]string `json:"key"`
		Metrics map[string]Metric `json:"metrics"`
	} `json:"record"`
}

// Metric holds a metric's percentiles. CLS percentiles arrive as strings.
type Metric struct {
	Percentiles struct {
		P75 json.RawMessage `json:"p75"`
	} `json:"percentiles"`
}

type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
}

func New(apiKey, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{http: &http.Client{Timeout: timeout}, endpoint: endpoint, apiKey: apiKey}
}

// Raw posts q and returns the response body and status unmodified.
// Only transport failures are errors.
func (c *Client) Raw(ctx context.Context, q Query) ([]byte, int, error) {
	if c.apiKey == "" {
		return nil, 0, ErrMissingAPIKey
	}
	if q.FormFactor == "" {
		q.FormFactor = "DESKTOP"
	}
	if len(q.Metrics) == 0 {
		q.Metrics = DefaultMetrics
	}
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		// The request URL stays out of the error; callers surface it to clients.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, 0, fmt.Errorf("crux api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// QueryRecord posts q and decodes the record.
func (c *Client) QueryRecord(ctx context.Context, q Query) (Record, error) {
	body, status, err := c.Raw(ctx, q)
	if err != nil {
		return Record{}, err
	}
	if status < 200 || status >= 300 {
		return Record{}, &APIError{StatusCode: status, Body: body}
	}
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return Record{}, fmt.Errorf("decoding crux record: %w", err)
	}
	return rec, nil
}

// Metrics queries q and extracts the p75 values.
func (c *Client) Metrics(ctx context.Context, q Query) (models.MetricValues, error) {
	rec, err := c.QueryRecord(ctx, q)
	if err != nil {
		return models.MetricValues{}, err
	}
	return ExtractMetrics(rec), nil
}

// ExtractMetrics reads the p75 of TTFB, CLS and INP. Absent or unreadable
// values stay nil.
func ExtractMetrics(rec Record) models.MetricValues {
	m := rec.Record.Metrics
	return models.MetricValues{
		TTFB: p75(m, MetricTTFB),
		CLS:  p75(m, MetricCLS),
		INP:  p75(m, MetricINP),
	}
}

func p75(metrics map[string]Metric, name string) *float64 {
	metric, ok := metrics[name]
	if !ok || len(metric.Percentiles.P75) == 0 {
		return nil
	}
	var num float64
	if err := json.Unmarshal(metric.Percentiles.P75, &num); err == nil {
		return &num
	}
	var s string
	if err := json.Unmarshal(metric.Percentiles.P75, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
