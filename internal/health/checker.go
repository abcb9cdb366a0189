// Package health runs the diagnostics behind `taskboard doctor`.
//
// Each Checker verifies one thing the client depends on (the config file,
// the token file, the gateway, the stored session) and reports a Result.
// A Manager runs the registered checkers concurrently and folds their
// results into a Report:
//
//	m := health.NewManager()
//	m.AddChecker(health.NewConfigChecker(path))
//	m.AddChecker(health.NewGatewayChecker(baseURL))
//	report := m.Run(ctx)
package health

import (
	"context"
	"time"
)

// Checker is a single diagnostic.
type Checker interface {
	// Name is a short lowercase identifier such as "token-file"
	Name() string

	// Check runs the diagnostic. It must honor ctx's deadline.
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	// StatusHealthy means the dependency works
	StatusHealthy Status = "healthy"

	// StatusDegraded means commands still run but something needs attention,
	// e.g. nobody is logged in.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means commands depending on it will fail
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// severity orders statuses from best to worst
func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Result is what one check found.
type Result struct {
	Status  Status         `json:"status" yaml:"status"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`

	// Suggestion is the next step for anything short of healthy
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`

	Latency time.Duration `json:"latency_ns" yaml:"latency"`
}

// NewResult creates a result with an empty detail map.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail records a detail and returns r for chaining.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithSuggestion sets the next step and returns r for chaining.
func (r *Result) WithSuggestion(s string) *Result {
	r.Suggestion = s
	return r
}

// Healthy creates a healthy result.
func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

// Degraded creates a degraded result.
func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

// Unhealthy creates an unhealthy result.
func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
