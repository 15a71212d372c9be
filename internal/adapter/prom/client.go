// Package prom provides a thin client for the metrics backend's
// Prometheus-compatible query API, reached through the dashboard's
// same-origin proxy routes.
package prom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/perchlabs/perch/internal/resilience"
)

// Client issues instant and range queries against the metrics proxy.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *resilience.Breaker
}

// NewClient creates a metrics query client for the proxy at baseURL.
// Repeated backend failures open a circuit breaker so a dead backend
// is not hammered on every dashboard refresh.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: resilience.NewBreaker(5, 30*time.Second),
	}
}

// Sample is one entry of an instant-query vector result.
type Sample struct {
	Metric    map[string]string
	Value     float64
	Timestamp time.Time
}

// Point is one value in a range-query series.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Series is one entry of a range-query matrix result.
type Series struct {
	Metric map[string]string
	Points []Point
}

// Metadata describes one metric name as reported by the backend.
type Metadata struct {
	Type string `json:"type"`
	Help string `json:"help"`
	Unit string `json:"unit"`
}

// Query runs an instant query. A zero ts means "now" (the time parameter
// is omitted).
func (c *Client) Query(ctx context.Context, q string, ts time.Time) ([]Sample, error) {
	params := url.Values{}
	params.Set("query", q)
	if !ts.IsZero() {
		params.Set("time", formatTime(ts))
	}

	data, err := c.get(ctx, "/api/prometheus/query", params)
	if err != nil {
		return nil, err
	}
	if data.ResultType != "vector" {
		return nil, fmt.Errorf("prom: expected vector result, got %q", data.ResultType)
	}

	var raw []struct {
		Metric map[string]string `json:"metric"`
		Value  samplePair        `json:"value"`
	}
	if err := json.Unmarshal(data.Result, &raw); err != nil {
		return nil, fmt.Errorf("prom: decode vector: %w", err)
	}

	samples := make([]Sample, 0, len(raw))
	for _, r := range raw {
		samples = append(samples, Sample{
			Metric:    r.Metric,
			Value:     r.Value.value,
			Timestamp: r.Value.ts,
		})
	}
	return samples, nil
}

// QueryRange runs a range query with the given step.
func (c *Client) QueryRange(ctx context.Context, q string, start, end time.Time, step time.Duration) ([]Series, error) {
	params := url.Values{}
	params.Set("query", q)
	params.Set("start", formatTime(start))
	params.Set("end", formatTime(end))
	params.Set("step", strconv.FormatInt(int64(step.Seconds()), 10))

	data, err := c.get(ctx, "/api/prometheus/query_range", params)
	if err != nil {
		return nil, err
	}
	if data.ResultType != "matrix" {
		return nil, fmt.Errorf("prom: expected matrix result, got %q", data.ResultType)
	}

	var raw []struct {
		Metric map[string]string `json:"metric"`
		Values []samplePair      `json:"values"`
	}
	if err := json.Unmarshal(data.Result, &raw); err != nil {
		return nil, fmt.Errorf("prom: decode matrix: %w", err)
	}

	series := make([]Series, 0, len(raw))
	for _, r := range raw {
		points := make([]Point, 0, len(r.Values))
		for _, v := range r.Values {
			points = append(points, Point{Timestamp: v.ts, Value: v.value})
		}
		series = append(series, Series{Metric: r.Metric, Points: points})
	}
	return series, nil
}

// MetricMetadata returns backend metadata for the given metric name.
func (c *Client) MetricMetadata(ctx context.Context, metric string) (map[string][]Metadata, error) {
	params := url.Values{}
	if metric != "" {
		params.Set("metric", metric)
	}

	resp, err := c.doRequest(ctx, "/api/prometheus/metadata", params)
	if err != nil {
		return nil, err
	}

	var out map[string][]Metadata
	if err := json.Unmarshal(resp, &out); err != nil {
		return nil, fmt.Errorf("prom: decode metadata: %w", err)
	}
	return out, nil
}

// Healthy runs a trivial query to verify the backend answers.
func (c *Client) Healthy(ctx context.Context) error {
	_, err := c.Query(ctx, "vector(1)", time.Time{})
	return err
}

// envelope is the proxy's response wrapper.
type envelope struct {
	Status    string    `json:"status"`
	Data      *dataBody `json:"data,omitempty"`
	ErrorType string    `json:"errorType,omitempty"`
	Error     string    `json:"error,omitempty"`
}

type dataBody struct {
	ResultType string          `json:"resultType"`
	Result     json.RawMessage `json:"result"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*dataBody, error) {
	body, err := c.doRequest(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("prom: decode envelope: %w", err)
	}
	if env.Status != "success" {
		return nil, fmt.Errorf("prom: query failed: %s: %s", env.ErrorType, env.Error)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("prom: success response without data")
	}
	return env.Data, nil
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if enc := params.Encode(); enc != "" {
		u += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("prom: create request: %w", err)
	}

	var body []byte
	err = c.breaker.Execute(func() error {
		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("prom: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("prom: unexpected status %s", resp.Status)
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("prom: read response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// samplePair is the wire form [unix_seconds, "value"].
type samplePair struct {
	ts    time.Time
	value float64
}

func (p *samplePair) UnmarshalJSON(data []byte) error {
	var arr [2]json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}

	var secs float64
	if err := json.Unmarshal(arr[0], &secs); err != nil {
		return fmt.Errorf("sample timestamp: %w", err)
	}
	var val string
	if err := json.Unmarshal(arr[1], &val); err != nil {
		return fmt.Errorf("sample value: %w", err)
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("sample value %q: %w", val, err)
	}

	p.ts = time.Unix(int64(secs), int64((secs-float64(int64(secs)))*1e9)).UTC()
	p.value = f
	return nil
}

func formatTime(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
