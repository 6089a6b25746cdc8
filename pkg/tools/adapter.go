package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/amosWeiskopf/rankpath-mcp/internal/models"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/metrics"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/rankpath"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/reporter"
	"github.com/rs/zerolog"
)

// Tool names
const (
	ToolListProjects    = "list_projects"
	ToolGetProject      = "get_project"
	ToolGetCrawlHistory = "get_crawl_history"
	ToolGetLatestCrawl  = "get_latest_crawl"
	ToolGetIssues       = "get_issues"
)

var (
	// ErrUnknownTool is returned for a tool name that is not published.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments is returned when arguments do not match the tool schema.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// API is the subset of the RankPath client the tools call.
type API interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	GetCrawlHistory(ctx context.Context, projectID string, params rankpath.CrawlHistoryParams) (*models.CrawlHistory, error)
	GetLatestCrawl(ctx context.Context, projectID string) (*models.CrawlResult, error)
	GetIssues(ctx context.Context, projectID string, filter rankpath.IssueFilter) (*models.IssueList, error)
}

// Definition describes one published tool
type Definition struct {
	Name        string
	Description string
	Schema      Schema

	call func(ctx context.Context, api API, args arguments) (any, error)
}

// Result is the outcome of one tool call. IsError marks upstream failures so
// the host can tell them apart from a successful empty result.
type Result struct {
	Text    string
	IsError bool
	// Value is the decoded result on success, nil otherwise.
	Value any
}

// Adapter maps tool calls onto API calls
type Adapter struct {
	api      API
	defs     []Definition
	byName   map[string]Definition
	reporter *reporter.Reporter
	logger   zerolog.Logger
	metrics  *metrics.Recorder
}

// Option customizes an Adapter
type Option func(*Adapter)

// WithLogger sets the logger used for invocation logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// WithMetrics records every invocation on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Adapter) { a.metrics = r }
}

// New creates an Adapter publishing the RankPath tools.
func New(api API, opts ...Option) *Adapter {
	a := &Adapter{
		api:      api,
		defs:     definitions(),
		reporter: reporter.New(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With().Str("component", "tools").Logger()

	a.byName = make(map[string]Definition, len(a.defs))
	for _, d := range a.defs {
		a.byName[d.Name] = d
	}
	return a
}

// Definitions returns the published tools in a fixed order.
func (a *Adapter) Definitions() []Definition {
	out := make([]Definition, len(a.defs))
	copy(out, a.defs)
	return out
}

// Invoke runs the named tool. A non-nil error means the call never reached
// the API: the tool is unknown, the arguments are malformed, or ctx was
// cancelled. Every upstream failure is reported as a Result with IsError set.
func (a *Adapter) Invoke(ctx context.Context, name string, args map[string]any) (Result, error) {
	def, ok := a.byName[name]
	if !ok {
		a.metrics.ObserveToolInvocation(metrics.UnknownTool, metrics.ResultInvalid)
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	logger := a.logger.With().Str("tool", name).Logger()
	start := time.Now()

	parsed, err := parseArguments(def.Schema, args)
	if err != nil {
		a.metrics.ObserveToolInvocation(name, metrics.ResultInvalid)
		logger.Debug().Err(err).Msg("rejected tool arguments")
		return Result{}, err
	}

	value, err := def.call(ctx, a.api, parsed)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			a.metrics.ObserveToolInvocation(name, metrics.ResultCancelled)
			logger.Debug().Err(ctxErr).Msg("tool call cancelled")
			return Result{}, ctxErr
		}
		a.metrics.ObserveToolInvocation(name, metrics.ResultToolError)
		logger.Info().
			Err(err).
			Str("kind", rankpath.KindOf(err).String()).
			Dur("elapsed", time.Since(start)).
			Msg("tool call failed")
		return Result{Text: err.Error(), IsError: true}, nil
	}

	text, err := a.reporter.JSON(value)
	if err != nil {
		a.metrics.ObserveToolInvocation(name, metrics.ResultToolError)
		logger.Error().Err(err).Msg("failed to render tool result")
		return Result{Text: err.Error(), IsError: true}, nil
	}

	a.metrics.ObserveToolInvocation(name, metrics.ResultOK)
	logger.Debug().Dur("elapsed", time.Since(start)).Msg("tool call completed")
	return Result{Text: text, Value: value}, nil
}

const projectIDDescription = "The project UUID"

func projectIDField() Field {
	return Field{Name: "projectId", Type: TypeString, Description: projectIDDescription, Required: true}
}

func definitions() []Definition {
	return []Definition{
		{
			Name:        ToolListProjects,
			Description: "List all RankPath projects for the authenticated user",
			Schema:      Schema{},
			call: func(ctx context.Context, api API, _ arguments) (any, error) {
				return api.ListProjects(ctx)
			},
		},
		{
			Name:        ToolGetProject,
			Description: "Get details for a specific RankPath project by its UUID",
			Schema:      Schema{Fields: []Field{projectIDField()}},
			call: func(ctx context.Context, api API, args arguments) (any, error) {
				return api.GetProject(ctx, args.str("projectId"))
			},
		},
		{
			Name:        ToolGetCrawlHistory,
			Description: "Get paginated crawl history for a RankPath project",
			Schema: Schema{Fields: []Field{
				projectIDField(),
				{Name: "limit", Type: TypeInteger, Description: "Maximum number of results to return (1-100, default: 10)", Minimum: bound(1), Maximum: bound(100)},
				{Name: "offset", Type: TypeInteger, Description: "Number of results to skip for pagination (default: 0)", Minimum: bound(0)},
			}},
			call: func(ctx context.Context, api API, args arguments) (any, error) {
				return api.GetCrawlHistory(ctx, args.str("projectId"), rankpath.CrawlHistoryParams{
					Limit:  args.ints["limit"],
					Offset: args.ints["offset"],
				})
			},
		},
		{
			Name:        ToolGetLatestCrawl,
			Description: "Get the latest crawl result with full SEO analysis for a RankPath project",
			Schema:      Schema{Fields: []Field{projectIDField()}},
			call: func(ctx context.Context, api API, args arguments) (any, error) {
				return api.GetLatestCrawl(ctx, args.str("projectId"))
			},
		},
		{
			Name:        ToolGetIssues,
			Description: "Get SEO issues for a RankPath project, optionally filtered by severity (critical/warning/info) or status (open/acknowledged/ignored)",
			Schema: Schema{Fields: []Field{
				projectIDField(),
				{Name: "severity", Type: TypeString, Description: `Filter by severity: "critical", "warning", or "info"`},
				{Name: "status", Type: TypeString, Description: `Filter by status: "open", "acknowledged", or "ignored"`},
			}},
			call: func(ctx context.Context, api API, args arguments) (any, error) {
				return api.GetIssues(ctx, args.str("projectId"), rankpath.IssueFilter{
					Severity: args.strs["severity"],
					Status:   args.strs["status"],
				})
			},
		},
	}
}

// arguments holds the typed values of the fields present in a call.
type arguments struct {
	strs map[string]*string
	ints map[string]*int
}

func (a arguments) str(name string) string {
	if v := a.strs[name]; v != nil {
		return *v
	}
	return ""
}

// parseArguments checks raw protocol arguments against the schema. Range
// limits in the schema are advisory; enforcing them is left to the API.
func parseArguments(schema Schema, raw map[string]any) (arguments, error) {
	out := arguments{strs: map[string]*string{}, ints: map[string]*int{}}

	for _, f := range schema.Fields {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Required {
				return out, fmt.Errorf("%w: missing required argument %q", ErrInvalidArguments, f.Name)
			}
			continue
		}

		switch f.Type {
		case TypeString:
			s, ok := v.(string)
			if !ok {
				return out, fmt.Errorf("%w: argument %q must be a string", ErrInvalidArguments, f.Name)
			}
			if f.Required && strings.TrimSpace(s) == "" {
				return out, fmt.Errorf("%w: argument %q must not be empty", ErrInvalidArguments, f.Name)
			}
			out.strs[f.Name] = &s
		case TypeInteger:
			n, err := toInt(v)
			if err != nil {
				return out, fmt.Errorf("%w: argument %q %v", ErrInvalidArguments, f.Name, err)
			}
			out.ints[f.Name] = &n
		}
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(i), nil
	default:
		return 0, fmt.Errorf("must be an integer")
	}
}
