// Package metrics exposes Prometheus instrumentation for tool calls and
// remote API requests. A Manager travels on the context; when none is
// present every recording helper is a no-op, so tests and stdio deployments
// without a metrics listener pay nothing.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type contextKey string

const managerKey contextKey = "metrics_manager"

// Manager owns the metric vectors and the registry they live in.
type Manager struct {
	registry *prometheus.Registry

	toolCalls      *prometheus.CounterVec
	toolDuration   *prometheus.HistogramVec
	remoteRequests *prometheus.CounterVec
}

// NewManager creates a Manager with its own registry.
func NewManager() *Manager {
	m := &Manager{
		registry: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilldoc_tool_calls_total",
			Help: "Tool invocations by name and outcome.",
		}, []string{"tool", "outcome"}),
		toolDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pilldoc_tool_duration_seconds",
			Help:    "Tool handler latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		remoteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pilldoc_remote_requests_total",
			Help: "Remote API requests by endpoint and HTTP status.",
		}, []string{"endpoint", "status"}),
	}
	m.registry.MustRegister(m.toolCalls, m.toolDuration, m.remoteRequests)
	return m
}

// Registry returns the registry for mounting a /metrics handler.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// ToolCall records one tool invocation.
func (m *Manager) ToolCall(tool, outcome string, elapsed time.Duration) {
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
}

// RemoteRequest records one remote API request. status 0 means the request
// never produced a response.
func (m *Manager) RemoteRequest(endpoint string, status int) {
	m.remoteRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// WithManager attaches the manager to the context.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey, m)
}

// FromContext returns the manager on the context, or nil.
func FromContext(ctx context.Context) *Manager {
	m, _ := ctx.Value(managerKey).(*Manager)
	return m
}

// RecordToolCall records a tool invocation against the context's manager,
// if any.
func RecordToolCall(ctx context.Context, tool, outcome string, elapsed time.Duration) {
	if m := FromContext(ctx); m != nil {
		m.ToolCall(tool, outcome, elapsed)
	}
}

// RecordRemote records a remote API request against the context's manager,
// if any.
func RecordRemote(ctx context.Context, endpoint string, status int) {
	if m := FromContext(ctx); m != nil {
		m.RemoteRequest(endpoint, status)
	}
}
