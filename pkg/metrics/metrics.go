package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for upstream API calls
const (
	OutcomeOK             = "ok"
	OutcomeAPIError       = "api_error"
	OutcomeTransportError = "transport_error"
	OutcomeDecodeError    = "decode_error"
)

// Results recorded for tool invocations
const (
	ResultOK        = "ok"
	ResultToolError = "tool_error"
	ResultInvalid   = "invalid"
	ResultCancelled = "cancelled"
)

// UnknownTool is the tool label for names that are not published, keeping
// the label set bounded.
const UnknownTool = "unknown"

// Recorder owns the collectors of one server instance. A nil *Recorder
// records nothing, so callers never need to check for it.
type Recorder struct {
	registry *prometheus.Registry

	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	ToolInvocations    *prometheus.CounterVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rankpath_api_requests_total",
				Help: "Total number of requests sent to the RankPath API.",
			},
			[]string{"endpoint", "outcome"},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rankpath_api_request_duration_seconds",
				Help:    "Duration of requests sent to the RankPath API.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		ToolInvocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rankpath_tool_invocations_total",
				Help: "Total number of tool invocations by tool and result.",
			},
			[]string{"tool", "result"},
		),
	}
	r.registry.MustRegister(r.APIRequestsTotal, r.APIRequestDuration, r.ToolInvocations)
	return r
}

// ObserveAPIRequest records one upstream call.
func (r *Recorder) ObserveAPIRequest(endpoint, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.APIRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	r.APIRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveToolInvocation records one tool call.
func (r *Recorder) ObserveToolInvocation(tool, result string) {
	if r == nil {
		return
	}
	r.ToolInvocations.WithLabelValues(tool, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}
