// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package labelstudio is the HTTP client for the Label Studio API, the
// upstream annotation tool. Listings are paginated server-side; the client
// pages until the server signals no further pages (absent next cursor, an
// empty page, or a 404 on a page beyond the first).
//
// Requests pass through a token-bucket rate limiter and a circuit breaker so
// a degraded upstream trips fast instead of piling up timeouts during bulk
// refreshes.
package labelstudio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/metrics"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

// ErrNotConfigured is returned when the client is used without a base URL.
var ErrNotConfigured = errors.New("labelstudio: base URL is not configured")

// Config holds client configuration.
type Config struct {
	// URL is the Label Studio base URL, e.g. http://localhost:8080.
	URL string

	// Token is the API token sent as "Authorization: Token <token>".
	Token string

	// PageSize is the page length requested from paginated listings.
	// Default: 100.
	PageSize int

	// Timeout bounds each HTTP request. Default: 30s.
	Timeout time.Duration

	// RequestsPerSecond caps the request rate. Default: 10.
	RequestsPerSecond float64
}

// Client talks to the Label Studio API.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	client   *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient creates a Label Studio API client.
func NewClient(cfg Config) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "labelstudio",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerOpen(to == gobreaker.StateOpen)
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:  cfg.URL,
		token:    cfg.Token,
		pageSize: cfg.PageSize,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		breaker:  breaker,
	}
}

// ListProjects returns every annotation project, paging until the server
// reports no next page.
func (c *Client) ListProjects(ctx context.Context) ([]lsmodels.Project, error) {
	var projects []lsmodels.Project

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(c.pageSize))

		body, status, err := c.get(ctx, "/api/projects", params)
		if err != nil {
			return nil, fmt.Errorf("list projects page %d: %w", page, err)
		}
		if status == http.StatusNotFound && page > 1 {
			// Label Studio 404s on pages past the end.
			break
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("list projects page %d: unexpected status %d", page, status)
		}

		var pageData lsmodels.ProjectPage
		if err := json.Unmarshal(body, &pageData); err != nil {
			return nil, fmt.Errorf("decode projects page %d: %w", page, err)
		}
		if len(pageData.Results) == 0 {
			break
		}
		projects = append(projects, pageData.Results...)
		if pageData.Next == nil {
			break
		}
	}

	return projects, nil
}

// ListProjectTasks returns every task of one project with its annotations,
// paging until an empty page or a 404 past the first page.
func (c *Client) ListProjectTasks(ctx context.Context, projectID int64) ([]lsmodels.Task, error) {
	var tasks []lsmodels.Task

	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("project", strconv.FormatInt(projectID, 10))
		params.Set("page", strconv.Itoa(page))
		params.Set("page_size", strconv.Itoa(c.pageSize))

		body, status, err := c.get(ctx, "/api/tasks", params)
		if err != nil {
			return nil, fmt.Errorf("list tasks for project %d page %d: %w", projectID, page, err)
		}
		if status == http.StatusNotFound && page > 1 {
			break
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("list tasks for project %d page %d: unexpected status %d", projectID, page, status)
		}

		var pageData lsmodels.TaskPage
		if err := json.Unmarshal(body, &pageData); err != nil {
			return nil, fmt.Errorf("decode tasks page %d: %w", page, err)
		}
		if len(pageData.Results) == 0 {
			break
		}
		tasks = append(tasks, pageData.Results...)
		if pageData.Next == nil && len(pageData.Results) < c.pageSize {
			break
		}
	}

	return tasks, nil
}

// get performs one rate-limited request through the circuit breaker and
// returns the response body and status code. 404 is returned to the caller
// rather than treated as an error, since it terminates pagination.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	if c.baseURL == "" {
		return nil, 0, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	start := time.Now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Token "+c.token)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		// 5xx counts as a breaker failure; 4xx is a caller problem.
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(path, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
