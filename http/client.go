// Package http provides the HTTP implementation of the archlens catalog
// and diagnostic services, speaking the ArchLens API's JSON contract.
package http

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
	"strings"
	"time"

	"github.com/archlens/archlens"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 10 * time.Second

// Ensure Client implements the service interfaces at compile time.
var (
	_ archlens.CatalogService    = (*Client)(nil)
	_ archlens.DiagnosticService = (*Client)(nil)
)

// Client issues requests against the ArchLens API. All operations share
// one transport configuration: fixed base endpoint, request timeout and
// JSON content type. Requests do not block each other; each call is an
// independent HTTP request.
type Client struct {
	base        *url.URL
	httpClient  *http.Client
	timeout     time.Duration
	maxPageSize int
	limiter     *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for API requests.
// Defaults to DefaultRequestTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client's own
// timeout takes precedence over WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithMaxPageSize sets the upper bound applied to page size parameters.
// Defaults to archlens.MaxPageSize.
func WithMaxPageSize(n int) Option {
	return func(c *Client) {
		c.maxPageSize = n
	}
}

// WithRateLimit throttles outgoing requests to at most rps requests per
// second with a burst of 1. Zero or negative rps disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a Client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, archlens.Errorf(archlens.EINVALID, "invalid base URL %q", baseURL)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, archlens.Errorf(archlens.EINVALID, "base URL %q must include scheme and host", baseURL)
	}

	c := &Client{
		base:        base,
		timeout:     DefaultRequestTimeout,
		maxPageSize: archlens.MaxPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	return c, nil
}

// FetchCategories returns all categories with their package counts.
func (c *Client) FetchCategories(ctx context.Context) ([]archlens.Category, error) {
	var categories []archlens.Category
	if err := c.get(ctx, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// FetchPackages returns one page of packages for a category. The category
// name is percent-encoded into the request path.
func (c *Client) FetchPackages(ctx context.Context, category string, page, pageSize int) (*archlens.Page, error) {
	if category == "" {
		return nil, archlens.Errorf(archlens.EINVALID, "category name required")
	}
	params, err := c.pageParams(page, pageSize)
	if err != nil {
		return nil, err
	}

	var result archlens.Page
	if err := c.get(ctx, "/api/packages/"+url.PathEscape(category), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchSearch returns one page of packages matching a free-text query.
func (c *Client) FetchSearch(ctx context.Context, query string, page, pageSize int) (*archlens.Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, archlens.Errorf(archlens.EINVALID, "search query required")
	}
	params, err := c.pageParams(page, pageSize)
	if err != nil {
		return nil, err
	}
	params.Set("q", query)

	var result archlens.Page
	if err := c.get(ctx, "/api/search", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitDiagnosis sends a problem description for diagnosis. The request
// is a POST and is never retried automatically.
func (c *Client) SubmitDiagnosis(ctx context.Context, problem string) (*archlens.DiagnosticResult, error) {
	if strings.TrimSpace(problem) == "" {
		return nil, archlens.Errorf(archlens.EINVALID, "problem description required")
	}

	body, err := json.Marshal(struct {
		Problem string `json:"problem"`
	}{Problem: problem})
	if err != nil {
		return nil, archlens.Errorf(archlens.EINTERNAL, "encode request: %v", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/diagnose", nil, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result archlens.DiagnosticResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Healthy reports whether the remote service is reachable and serving.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, &struct {
		Status string `json:"status"`
	}{})
}

// pageParams validates page and pageSize and returns them as query values.
// pageSize defaults to archlens.DefaultPageSize when zero and is clamped
// to the configured maximum.
func (c *Client) pageParams(page, pageSize int) (url.Values, error) {
	if page < 1 {
		return nil, archlens.Errorf(archlens.EINVALID, "page must be >= 1, got %d", page)
	}
	if pageSize <= 0 {
		pageSize = archlens.DefaultPageSize
	}
	if pageSize > c.maxPageSize {
		pageSize = c.maxPageSize
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))
	return params, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, body io.Reader) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, archlens.Errorf(archlens.EINTERNAL, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Request IDs correlate client log lines with server-side logs.
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// do executes the request and decodes the JSON response into out.
// Transport failures map to ENETWORK, timeouts to ETIMEOUT, 404 to
// ENOTFOUND and other non-2xx statuses to ESERVER carrying the server's
// detail message when present.
func (c *Client) do(req *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return archlens.Errorf(archlens.ENETWORK, "rate limit wait: %v", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return archlens.Errorf(archlens.ETIMEOUT, "request to %s timed out after %s", req.URL.Path, c.timeout)
		}
		return archlens.Errorf(archlens.ENETWORK, "request to %s failed: %v", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := serverDetail(resp.Body)
		if detail == "" {
			detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound {
			return archlens.Errorf(archlens.ENOTFOUND, "%s", detail)
		}
		return archlens.Errorf(archlens.ESERVER, "%s", detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return archlens.Errorf(archlens.ESERVER, "invalid response from %s: %v", req.URL.Path, err)
	}
	return nil
}

// isTimeout reports whether a transport error is a timeout, either from
// the client's own deadline or the request context.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// serverDetail extracts the FastAPI-style {"detail": "..."} message from
// an error response body. Returns an empty string if the body is not in
// that shape.
func serverDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}
