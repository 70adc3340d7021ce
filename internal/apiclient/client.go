// Package apiclient talks to the territory score backend. All calls retry
// transient failures and share a circuit breaker so a dead backend fails the
// session fast instead of stalling every feature lookup.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/diag360/territory-cli/internal/model"
	"github.com/diag360/territory-cli/internal/resilience"
)

const defaultBaseURL = "https://api.diag360.fr/api/v1"

// ErrNotFound is returned when the backend has no record for a code.
var ErrNotFound = eris.New("apiclient: territory not found")

// ListParams narrows and pages a territory listing.
type ListParams struct {
	Search  string
	Limit   int
	Offset  int
	OrderBy string
}

// Client exposes the backend operations the session needs.
type Client interface {
	ListTerritories(ctx context.Context, p ListParams) (*model.TerritoryListResponse, error)
	GetTerritoryByCode(ctx context.Context, codeSiren string) (*model.TerritoryRecord, error)
	SearchTerritories(ctx context.Context, query string, limit int) ([]model.TerritoryRecord, error)
	CreateFlashReport(ctx context.Context, req model.FlashReportRequest) (*model.FlashReportResponse, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default backend URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithRetry overrides the default retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) { c.retry = cfg }
}

type httpClient struct {
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// New creates a backend client.
func New(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 8,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry:   resilience.DefaultRetryConfig(),
		breaker: resilience.NewCircuitBreaker("score-api", 5, 30*time.Second),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ListTerritories(ctx context.Context, p ListParams) (*model.TerritoryListResponse, error) {
	q := url.Values{}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.OrderBy != "" {
		q.Set("order_by", p.OrderBy)
	}

	var out model.TerritoryListResponse
	if err := c.get(ctx, "/territories", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) GetTerritoryByCode(ctx context.Context, codeSiren string) (*model.TerritoryRecord, error) {
	var out model.TerritoryRecord
	if err := c.get(ctx, "/territories/"+url.PathEscape(codeSiren), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) SearchTerritories(ctx context.Context, query string, limit int) ([]model.TerritoryRecord, error) {
	resp, err := c.ListTerritories(ctx, ListParams{Search: query, Limit: limit, OrderBy: "name"})
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *httpClient) CreateFlashReport(ctx context.Context, req model.FlashReportRequest) (*model.FlashReportResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "apiclient: marshal flash report request")
	}

	var out model.FlashReportResponse
	if err := c.do(ctx, http.MethodPost, "/reports/flash", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, out)
}

// do runs one backend call through the breaker and the retry policy. Status
// codes map to the error taxonomy: 404 to ErrNotFound, 429 and 5xx to
// transient errors that count toward the breaker, other non-2xx to plain
// errors.
func (c *httpClient) do(ctx context.Context, method, path string, q url.Values, body []byte, out any) error {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Do(ctx, c.retry, func(ctx context.Context) error {
			var reader io.Reader
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, target, reader)
			if err != nil {
				return eris.Wrap(err, "apiclient: create request")
			}
			req.Header.Set("Accept", "application/json")
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, err := c.http.Do(req)
			if err != nil {
				return resilience.NewTransientError(err, 0)
			}
			defer resp.Body.Close() //nolint:errcheck

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return resilience.NewTransientError(eris.Wrap(err, "apiclient: read response"), resp.StatusCode)
			}

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return ErrNotFound
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return resilience.NewTransientError(
					eris.Errorf("apiclient: http %d from %s", resp.StatusCode, target),
					resp.StatusCode,
				)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				return eris.Errorf("apiclient: unexpected status %d from %s: %s",
					resp.StatusCode, target, string(respBody))
			}

			if out == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return eris.Wrapf(err, "apiclient: unmarshal response from %s", target)
			}
			return nil
		})
	})
}
