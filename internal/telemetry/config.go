package telemetry

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string `yaml:"-"`

	// ServiceVersion is the version of the service
	ServiceVersion string `yaml:"-"`

	// Enabled determines whether tracing is enabled.
	// When false, a noop tracer is used.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/HTTP collector endpoint (host:port).
	// If empty, spans are recorded but not exported.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure disables TLS towards the collector
	Insecure bool `yaml:"insecure,omitempty"`

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64 `yaml:"sample_rate,omitempty"`
}

// DefaultConfig returns the CLI default: tracing off
func DefaultConfig() Config {
	return Config{
		ServiceName:    "taskboard",
		ServiceVersion: "dev",
		Enabled:        false,
		SampleRate:     1.0,
	}
}
