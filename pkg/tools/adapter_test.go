package tools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amosWeiskopf/rankpath-mcp/internal/models"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/metrics"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/rankpath"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records the arguments of the last call and returns canned values.
type fakeAPI struct {
	projectID string
	history   rankpath.CrawlHistoryParams
	filter    rankpath.IssueFilter
	err       error
}

func (f *fakeAPI) ListProjects(ctx context.Context) ([]models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []models.Project{}, nil
}

func (f *fakeAPI) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	f.projectID = projectID
	if f.err != nil {
		return nil, f.err
	}
	return &models.Project{ID: projectID, Name: "Example"}, nil
}

func (f *fakeAPI) GetCrawlHistory(ctx context.Context, projectID string, params rankpath.CrawlHistoryParams) (*models.CrawlHistory, error) {
	f.projectID = projectID
	f.history = params
	if f.err != nil {
		return nil, f.err
	}
	return &models.CrawlHistory{Crawls: []models.CrawlSummary{}}, nil
}

func (f *fakeAPI) GetLatestCrawl(ctx context.Context, projectID string) (*models.CrawlResult, error) {
	f.projectID = projectID
	if f.err != nil {
		return nil, f.err
	}
	return &models.CrawlResult{ID: "c1", ProjectID: projectID, Status: "completed"}, nil
}

func (f *fakeAPI) GetIssues(ctx context.Context, projectID string, filter rankpath.IssueFilter) (*models.IssueList, error) {
	f.projectID = projectID
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &models.IssueList{Issues: []models.Issue{}}, nil
}

// toolCalls has one valid call per published tool.
var toolCalls = []struct {
	name string
	args map[string]any
}{
	{name: ToolListProjects, args: nil},
	{name: ToolGetProject, args: map[string]any{"projectId": "p1"}},
	{name: ToolGetCrawlHistory, args: map[string]any{"projectId": "p1", "limit": float64(5)}},
	{name: ToolGetLatestCrawl, args: map[string]any{"projectId": "p1"}},
	{name: ToolGetIssues, args: map[string]any{"projectId": "p1", "severity": "critical"}},
}

func upstream(t *testing.T, status int, body string) *rankpath.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	c, err := rankpath.New("test-key", rankpath.WithBaseURL(server.URL), rankpath.WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return c
}

func TestDefinitions(t *testing.T) {
	a := New(&fakeAPI{})
	defs := a.Definitions()

	var names []string
	for _, d := range defs {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Description)
	}
	assert.Equal(t, []string{ToolListProjects, ToolGetProject, ToolGetCrawlHistory, ToolGetLatestCrawl, ToolGetIssues}, names)

	assert.Empty(t, defs[0].Schema.Required())
	for _, d := range defs[1:] {
		assert.Equal(t, []string{"projectId"}, d.Schema.Required(), d.Name)
	}

	limit, ok := defs[2].Schema.Field("limit")
	require.True(t, ok)
	assert.Equal(t, TypeInteger, limit.Type)
	assert.False(t, limit.Required)

	severity, ok := defs[4].Schema.Field("severity")
	require.True(t, ok)
	assert.Equal(t, TypeString, severity.Type)
}

func TestInvokeMapsArguments(t *testing.T) {
	api := &fakeAPI{}
	a := New(api)
	ctx := context.Background()

	_, err := a.Invoke(ctx, ToolGetCrawlHistory, map[string]any{"projectId": "p1"})
	require.NoError(t, err)
	assert.Equal(t, "p1", api.projectID)
	assert.Nil(t, api.history.Limit)
	assert.Nil(t, api.history.Offset)

	_, err = a.Invoke(ctx, ToolGetCrawlHistory, map[string]any{"projectId": "p2", "limit": float64(5), "offset": json.Number("10")})
	require.NoError(t, err)
	require.NotNil(t, api.history.Limit)
	require.NotNil(t, api.history.Offset)
	assert.Equal(t, 5, *api.history.Limit)
	assert.Equal(t, 10, *api.history.Offset)

	_, err = a.Invoke(ctx, ToolGetIssues, map[string]any{"projectId": "p1", "status": "open", "severity": nil})
	require.NoError(t, err)
	assert.Nil(t, api.filter.Severity)
	require.NotNil(t, api.filter.Status)
	assert.Equal(t, "open", *api.filter.Status)
}

func TestInvokeRejectsMalformedArguments(t *testing.T) {
	tests := []struct {
		name string
		tool string
		args map[string]any
		want error
	}{
		{name: "unknown tool", tool: "delete_project", args: nil, want: ErrUnknownTool},
		{name: "missing project id", tool: ToolGetProject, args: map[string]any{}, want: ErrInvalidArguments},
		{name: "blank project id", tool: ToolGetLatestCrawl, args: map[string]any{"projectId": "  "}, want: ErrInvalidArguments},
		{name: "numeric project id", tool: ToolGetProject, args: map[string]any{"projectId": 12.0}, want: ErrInvalidArguments},
		{name: "fractional limit", tool: ToolGetCrawlHistory, args: map[string]any{"projectId": "p1", "limit": 2.5}, want: ErrInvalidArguments},
		{name: "string offset", tool: ToolGetCrawlHistory, args: map[string]any{"projectId": "p1", "offset": "10"}, want: ErrInvalidArguments},
		{name: "boolean severity", tool: ToolGetIssues, args: map[string]any{"projectId": "p1", "severity": true}, want: ErrInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			_, err := New(api).Invoke(context.Background(), tt.tool, tt.args)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, api.projectID, "api must not be called")
		})
	}
}

func TestOutOfRangeLimitIsForwarded(t *testing.T) {
	api := &fakeAPI{}
	_, err := New(api).Invoke(context.Background(), ToolGetCrawlHistory, map[string]any{"projectId": "p1", "limit": float64(500)})
	require.NoError(t, err)
	assert.Equal(t, 500, *api.history.Limit)
}

func TestStructuredErrorForEveryTool(t *testing.T) {
	a := New(upstream(t, http.StatusNotFound, `{"error":"not_found","message":"no such project"}`))

	for _, call := range toolCalls {
		t.Run(call.name, func(t *testing.T) {
			res, err := a.Invoke(context.Background(), call.name, call.args)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Equal(t, "not_found: no such project", res.Text)
			assert.Nil(t, res.Value)
		})
	}
}

func TestUnstructuredErrorForEveryTool(t *testing.T) {
	a := New(upstream(t, http.StatusServiceUnavailable, `upstream down`))

	for _, call := range toolCalls {
		t.Run(call.name, func(t *testing.T) {
			res, err := a.Invoke(context.Background(), call.name, call.args)
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Equal(t, "503 Service Unavailable: ", res.Text)
		})
	}
}

func TestDecodeFailureIsFlagged(t *testing.T) {
	a := New(upstream(t, http.StatusOK, `not json`))

	res, err := a.Invoke(context.Background(), ToolListProjects, nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Text, "failed to decode response")
}

func TestIncompleteUpstreamRecordsAreFlagged(t *testing.T) {
	tests := []struct {
		name string
		tool string
		body string
	}{
		{name: "project with only an id", tool: ToolGetProject, body: `{"data":{"id":"p1"}}`},
		{name: "empty project in list", tool: ToolListProjects, body: `{"data":[{}]}`},
		{name: "empty crawl history", tool: ToolGetCrawlHistory, body: `{"data":{}}`},
		{name: "issues without total and summary", tool: ToolGetIssues, body: `{"data":{"issues":[]}}`},
		{name: "crawl without crawledAt", tool: ToolGetLatestCrawl, body: `{"data":{"id":"c1","projectId":"p1","status":"completed"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(upstream(t, http.StatusOK, tt.body))

			res, err := a.Invoke(context.Background(), tt.tool, map[string]any{"projectId": "p1"})
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, res.Text, "missing required field")
			assert.Nil(t, res.Value)
		})
	}
}

func TestSuccessRendersIndentedJSON(t *testing.T) {
	body := `{"data":{"id":"c1","projectId":"p1","status":"completed","crawledAt":"2024-05-01T10:00:00Z","score":91,"seoData":{"title":"Home","h1Tags":["Welcome"]},"contentMetrics":{"wordCount":420,"imageCount":3,"linkCount":12,"internalLinkCount":9,"externalLinkCount":3}}}`
	a := New(upstream(t, http.StatusOK, body))

	res, err := a.Invoke(context.Background(), ToolGetLatestCrawl, map[string]any{"projectId": "p1"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "\n  \"projectId\": \"p1\"")
	assert.NotContains(t, res.Text, "geoAnalysis")

	var decoded models.CrawlResult
	require.NoError(t, json.Unmarshal([]byte(res.Text), &decoded))
	assert.Equal(t, 420, *decoded.ContentMetrics.WordCount)
	assert.Equal(t, res.Value, &decoded)
}

func TestRepeatedCallsAreIdentical(t *testing.T) {
	body := `{"data":{"issues":[{"id":"i1","type":"missing_alt","severity":"warning","message":"Image without alt","details":{"src":"/a.png"},"status":"open","createdAt":"2024-05-01","updatedAt":"2024-05-02"}],"total":1,"summary":{"critical":0,"warning":1,"info":0,"open":1,"acknowledged":0,"ignored":0}}}`
	a := New(upstream(t, http.StatusOK, body))
	args := map[string]any{"projectId": "p1"}

	first, err := a.Invoke(context.Background(), ToolGetIssues, args)
	require.NoError(t, err)
	second, err := a.Invoke(context.Background(), ToolGetIssues, args)
	require.NoError(t, err)

	assert.False(t, first.IsError)
	assert.Equal(t, first.Text, second.Text)
}

func TestCancelledCallReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := New(&fakeAPI{err: context.Canceled})
	res, err := a.Invoke(ctx, ToolGetProject, map[string]any{"projectId": "p1"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Text)
}

func TestInvocationMetrics(t *testing.T) {
	rec := metrics.New()
	api := &fakeAPI{}
	a := New(api, WithMetrics(rec))
	ctx := context.Background()

	_, err := a.Invoke(ctx, ToolListProjects, nil)
	require.NoError(t, err)

	api.err = errors.New("boom")
	res, err := a.Invoke(ctx, ToolListProjects, nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "boom", res.Text)

	_, err = a.Invoke(ctx, ToolGetProject, nil)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ToolInvocations.WithLabelValues(ToolListProjects, metrics.ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ToolInvocations.WithLabelValues(ToolListProjects, metrics.ResultToolError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ToolInvocations.WithLabelValues(ToolGetProject, metrics.ResultInvalid)))
}

func TestUnknownToolsShareOneMetricLabel(t *testing.T) {
	rec := metrics.New()
	a := New(&fakeAPI{}, WithMetrics(rec))

	for _, name := range []string{"delete_project", "drop_everything", "x"} {
		_, err := a.Invoke(context.Background(), name, nil)
		assert.ErrorIs(t, err, ErrUnknownTool)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(rec.ToolInvocations.WithLabelValues(metrics.UnknownTool, metrics.ResultInvalid)))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.ToolInvocations))
}

func TestCancelledCallIsRecorded(t *testing.T) {
	rec := metrics.New()
	a := New(&fakeAPI{err: context.Canceled}, WithMetrics(rec))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Invoke(ctx, ToolGetLatestCrawl, map[string]any{"projectId": "p1"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.ToolInvocations.WithLabelValues(ToolGetLatestCrawl, metrics.ResultCancelled)))
}
