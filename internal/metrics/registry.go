package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Default is the default metrics instance
	Default         *Metrics
	defaultRegistry *prometheus.Registry
	once            sync.Once
)

// InitDefault initializes the default metrics instance on its own registry.
// This should be called once at application startup.
func InitDefault() *Metrics {
	once.Do(func() {
		defaultRegistry, Default = NewRegistry()
	})
	return Default
}

// GetDefault returns the default metrics instance
// If not initialized, it will initialize it first
func GetDefault() *Metrics {
	if Default == nil {
		return InitDefault()
	}
	return Default
}

// NewRegistry creates a new Prometheus registry with metrics
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	return reg, m
}

// WriteTextfile dumps the default registry in the node-exporter textfile
// format. A CLI process is too short-lived to scrape, so --metrics-file
// writes the counters on exit instead.
func WriteTextfile(path string) error {
	InitDefault()
	if err := prometheus.WriteToTextfile(path, defaultRegistry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Reset clears the default metrics instance (useful for testing)
func Reset() {
	Default = nil
	defaultRegistry = nil
	once = sync.Once{}
}
