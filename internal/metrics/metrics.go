package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for taskboard
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Backend round trips
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec
	APIErrors   *prometheus.CounterVec

	// Session lifecycle (login, check, logout)
	AuthEvents *prometheus.CounterVec

	// Route gate decisions
	NavigationDecisions *prometheus.CounterVec

	// Resource store operations
	StoreOperations *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskboard_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_api_requests_total",
				Help: "Total number of backend requests by method and normalized status",
			},
			[]string{"method", "status"},
		),
		APILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskboard_api_latency_seconds",
				Help:    "Backend round trip latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"method"},
		),
		APIErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_api_errors_total",
				Help: "Total number of failed backend requests",
			},
			[]string{"method", "kind"},
		),

		AuthEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_auth_events_total",
				Help: "Session lifecycle events",
			},
			[]string{"event", "result"},
		),

		NavigationDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_navigation_decisions_total",
				Help: "Route gate decisions by route and action",
			},
			[]string{"route", "action"},
		),

		StoreOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_store_operations_total",
				Help: "Resource store operations",
			},
			[]string{"store", "operation", "success"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskboard_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"code"},
		),
	}
}

// The Record helpers are nil-safe so components can run without metrics.

// RecordCommand records one command execution
func (m *Metrics) RecordCommand(command string, success bool, d time.Duration) {
	if m == nil {
		return
	}
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(success)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordRequest records a completed round trip. status is the normalized
// status (envelope status_code when present).
func (m *Metrics) RecordRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.APILatency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordRequestError records a failed round trip. kind is "transport",
// "timeout" or "status".
func (m *Metrics) RecordRequestError(method, kind string) {
	if m == nil {
		return
	}
	m.APIErrors.WithLabelValues(method, kind).Inc()
}

// RecordAuthEvent records a session lifecycle event
func (m *Metrics) RecordAuthEvent(event string, success bool) {
	if m == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.AuthEvents.WithLabelValues(event, result).Inc()
}

// RecordNavigation records a gate decision
func (m *Metrics) RecordNavigation(route, action string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.NavigationDecisions.WithLabelValues(route, action).Inc()
}

// RecordStoreOperation records a resource store call
func (m *Metrics) RecordStoreOperation(store, operation string, success bool) {
	if m == nil {
		return
	}
	m.StoreOperations.WithLabelValues(store, operation, strconv.FormatBool(success)).Inc()
}

// RecordError records an error by code
func (m *Metrics) RecordError(code string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code).Inc()
}
