package rankpath

import (
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

	"github.com/amosWeiskopf/rankpath-mcp/internal/models"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the production RankPath API root.
	DefaultBaseURL   = "https://rankpath.io/api"
	defaultUserAgent = "rankpath-mcp"
)

// Client calls the RankPath REST API. It holds no mutable state and is safe
// for concurrent use.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	logger    zerolog.Logger
	metrics   *metrics.Recorder
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient replaces the underlying transport handle.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every call by the same fixed budget. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics records every upstream call on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidArgument)
	}

	c := &Client{
		baseURL:   DefaultBaseURL,
		apiKey:    apiKey,
		userAgent: defaultUserAgent,
		http:      &http.Client{},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.baseURL = strings.TrimRight(c.baseURL, "/")
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", ErrInvalidArgument, c.baseURL)
	}

	if c.timeout < 0 {
		return nil, fmt.Errorf("%w: negative timeout %s", ErrInvalidArgument, c.timeout)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}

	c.logger = c.logger.With().Str("component", "rankpath").Logger()
	return c, nil
}

// CrawlHistoryParams selects a page of crawl history. Nil fields are not sent,
// leaving upstream to apply its own defaults.
type CrawlHistoryParams struct {
	Limit  *int
	Offset *int
}

// IssueFilter narrows an issue listing. Values are forwarded verbatim.
type IssueFilter struct {
	Severity *string
	Status   *string
}

// ListProjects returns every project of the authenticated user in upstream order.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := get[models.Projects](ctx, c, "list_projects", "/projects", nil)
	if err != nil {
		return nil, err
	}
	return []models.Project(projects), nil
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	path, err := projectPath(projectID, "")
	if err != nil {
		return nil, err
	}
	project, err := get[models.Project](ctx, c, "get_project", path, nil)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetCrawlHistory returns one page of a project's crawl history.
func (c *Client) GetCrawlHistory(ctx context.Context, projectID string, params CrawlHistoryParams) (*models.CrawlHistory, error) {
	path, err := projectPath(projectID, "/crawls")
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if params.Limit != nil {
		query.Set("limit", strconv.Itoa(*params.Limit))
	}
	if params.Offset != nil {
		query.Set("offset", strconv.Itoa(*params.Offset))
	}

	history, err := get[models.CrawlHistory](ctx, c, "get_crawl_history", path, query)
	if err != nil {
		return nil, err
	}
	return &history, nil
}

// GetLatestCrawl returns the most recent crawl of a project. A failed crawl
// is a successful call whose result carries the failure status.
func (c *Client) GetLatestCrawl(ctx context.Context, projectID string) (*models.CrawlResult, error) {
	path, err := projectPath(projectID, "/crawls/latest")
	if err != nil {
		return nil, err
	}
	result, err := get[models.CrawlResult](ctx, c, "get_latest_crawl", path, nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetIssues returns a project's issues, optionally filtered.
func (c *Client) GetIssues(ctx context.Context, projectID string, filter IssueFilter) (*models.IssueList, error) {
	path, err := projectPath(projectID, "/issues")
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if filter.Severity != nil {
		query.Set("severity", *filter.Severity)
	}
	if filter.Status != nil {
		query.Set("status", *filter.Status)
	}

	issues, err := get[models.IssueList](ctx, c, "get_issues", path, query)
	if err != nil {
		return nil, err
	}
	return &issues, nil
}

func projectPath(projectID, suffix string) (string, error) {
	if strings.TrimSpace(projectID) == "" {
		return "", fmt.Errorf("%w: project id is required", ErrInvalidArgument)
	}
	return "/projects/" + url.PathEscape(projectID) + suffix, nil
}

// envelope is the {"data": ...} wrapper of every successful response.
type envelope[T any] struct {
	Data *T `json:"data"`
}

type validator interface {
	Validate() error
}

func get[T any](ctx context.Context, c *Client, endpoint, path string, query url.Values) (T, error) {
	var zero T

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return zero, fmt.Errorf("%w: build request: %v", ErrInvalidArgument, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	logger := c.logger.With().
		Str("endpoint", endpoint).
		Str("path", path).
		Str("request_id", requestID).
		Logger()
	logger.Debug().Msg("sending request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPIRequest(endpoint, metrics.OutcomeTransportError, time.Since(start))
		logger.Warn().Err(err).Msg("request failed")
		return zero, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveAPIRequest(endpoint, metrics.OutcomeTransportError, elapsed)
		logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("failed to read response body")
		return zero, transportError(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := parseAPIError(resp, body)
		c.metrics.ObserveAPIRequest(endpoint, metrics.OutcomeAPIError, elapsed)
		logger.Warn().
			Int("status", resp.StatusCode).
			Str("error", apiErr.Code).
			Dur("elapsed", elapsed).
			Msg("upstream returned an error")
		return zero, apiErr
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		c.metrics.ObserveAPIRequest(endpoint, metrics.OutcomeDecodeError, elapsed)
		logger.Warn().Err(err).Int("status", resp.StatusCode).Msg("failed to decode response")
		return zero, decodeError(err)
	}
	if env.Data == nil {
		c.metrics.ObserveAPIRequest(endpoint, metrics.OutcomeDecodeError, elapsed)
		logger.Warn().Int("status", resp.StatusCode).Msg("response has no data field")
		return zero, decodeError(errors.New("missing data field"))
	}
	if v, ok := any(env.Data).(validator); ok {
		if err := v.Validate(); err != nil {
			c.metrics.ObserveAPIRequest(endpoint, metrics.OutcomeDecodeError, elapsed)
			logger.Warn().Err(err).Msg("response is incomplete")
			return zero, decodeError(err)
		}
	}

	c.metrics.ObserveAPIRequest(endpoint, metrics.OutcomeOK, elapsed)
	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("request completed")
	return *env.Data, nil
}

// parseAPIError turns a non-2xx response into an API error, falling back to
// the status line when the body is not a RankPath error document. A body
// with an empty error code also falls back, so {"error":"","message":"x"}
// reads as the status line rather than ": x".
func parseAPIError(resp *http.Response, body []byte) *Error {
	out := &Error{Kind: KindAPI, StatusCode: resp.StatusCode}

	var payload models.APIError
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		out.Code = payload.Error
		if payload.Message != nil {
			out.Message = *payload.Message
		}
		return out
	}

	out.Code = resp.Status
	if out.Code == "" {
		out.Code = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return out
}
