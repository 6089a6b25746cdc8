package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/amosWeiskopf/rankpath-mcp/internal/config"
	"github.com/amosWeiskopf/rankpath-mcp/internal/logging"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/metrics"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/rankpath"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/reporter"
	"github.com/amosWeiskopf/rankpath-mcp/pkg/tools"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rankpath-mcp",
	Short: "RankPath SEO analysis MCP server",
	Long: `rankpath-mcp exposes RankPath projects, crawl results and SEO issues
as MCP tools over stdio. It requires the RANKPATH_API_KEY environment variable.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the RankPath tools over stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Print the published tool definitions as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		type toolInfo struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			InputSchema any    `json:"inputSchema"`
		}

		var out []toolInfo
		for _, d := range tools.New(nil).Definitions() {
			out = append(out, toolInfo{Name: d.Name, Description: d.Description, InputSchema: d.Schema.JSONSchema()})
		}

		text, err := reporter.New().JSON(out)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var callCmd = &cobra.Command{
	Use:   "call [TOOL]",
	Short: "Invoke one tool and print its output",
	Example: `  rankpath-mcp call list_projects
  rankpath-mcp call get_issues --arg projectId=<uuid> --arg severity=critical`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawArgs, _ := cmd.Flags().GetStringArray("arg")
		format, _ := cmd.Flags().GetString("format")

		rt, err := setup(cmd)
		if err != nil {
			return err
		}

		toolArgs, err := parseToolArgs(rt.adapter, args[0], rawArgs)
		if err != nil {
			return err
		}

		res, err := rt.adapter.Invoke(cmd.Context(), args[0], toolArgs)
		if err != nil {
			return err
		}
		if res.IsError {
			return errors.New(res.Text)
		}

		text := res.Text
		if format != reporter.FormatJSON {
			text, err = reporter.New().Render(res.Value, format)
			if err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	// Call command flags
	callCmd.Flags().StringArray("arg", nil, "Tool argument as key=value (repeatable)")
	callCmd.Flags().String("format", reporter.FormatJSON, "Output format (json, markdown)")

	// Serve command flags
	for _, c := range []*cobra.Command{rootCmd, serveCmd} {
		c.Flags().String("metrics-addr", "", "Listen address for the Prometheus /metrics endpoint")
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}

// deps is everything a command needs to reach RankPath
type deps struct {
	cfg     *config.Config
	logger  zerolog.Logger
	metrics *metrics.Recorder
	adapter *tools.Adapter
}

func setup(cmd *cobra.Command) (*deps, error) {
	configPath, _ := cmd.Flags().GetString("config")
	logLevel, _ := cmd.Flags().GetString("log-level")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}

	recorder := metrics.New()
	client, err := rankpath.New(cfg.APIKey,
		rankpath.WithBaseURL(cfg.API.BaseURL),
		rankpath.WithTimeout(cfg.API.Timeout),
		rankpath.WithUserAgent(cfg.API.UserAgent+"/"+version),
		rankpath.WithLogger(logger),
		rankpath.WithMetrics(recorder),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &deps{
		cfg:     cfg,
		logger:  logger,
		metrics: recorder,
		adapter: tools.New(client, tools.WithLogger(logger), tools.WithMetrics(recorder)),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		rt.cfg.Metrics.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if rt.cfg.Metrics.Addr != "" {
		shutdown := serveMetrics(rt)
		defer shutdown()
	}

	stdio := server.NewStdioServer(tools.NewServer(rt.adapter, version))
	stdio.SetErrorLogger(log.New(logging.Component(rt.logger, "stdio"), "", 0))

	rt.logger.Info().Str("version", version).Str("base_url", rt.cfg.API.BaseURL).Msg("serving RankPath tools on stdio")
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	rt.logger.Info().Msg("server stopped")
	return nil
}

func serveMetrics(rt *deps) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.metrics.Handler())
	srv := &http.Server{Addr: rt.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger := logging.Component(rt.logger, "metrics")
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// parseToolArgs turns key=value pairs into tool arguments, converting values
// of integer fields to numbers.
func parseToolArgs(adapter *tools.Adapter, name string, pairs []string) (map[string]any, error) {
	var schema tools.Schema
	for _, d := range adapter.Definitions() {
		if d.Name == name {
			schema = d.Schema
		}
	}

	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q, expected key=value", pair)
		}
		if f, found := schema.Field(key); found && f.Type == tools.TypeInteger {
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("argument %q must be an integer: %w", key, err)
			}
			out[key] = n
			continue
		}
		out[key] = value
	}
	return out, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
