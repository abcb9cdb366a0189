// Package config loads the taskboard client configuration.
//
// Configuration lives in ~/.taskboard/config.yaml. Missing keys take their
// defaults and a few environment variables override the file:
//
//	TASKBOARD_HOME       directory holding config.yaml and auth.json
//	TASKBOARD_API_URL    api.base_url
//	TASKBOARD_TIMEOUT    api.timeout (Go duration, e.g. 10s)
//	TASKBOARD_LOG_LEVEL  logging.level
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskboard/internal/errors"
)

// Environment variables read by ApplyEnv and DefaultHome
const (
	EnvHome     = "TASKBOARD_HOME"
	EnvAPIURL   = "TASKBOARD_API_URL"
	EnvTimeout  = "TASKBOARD_TIMEOUT"
	EnvLogLevel = "TASKBOARD_LOG_LEVEL"
)

// Defaults
const (
	DefaultBaseURL  = "http://localhost:8000/api"
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 100

	ConfigFileName = "config.yaml"
	TokenFileName  = "auth.json"
)

// Config is the client configuration
type Config struct {
	API        APIConfig       `yaml:"api"`
	Auth       AuthConfig      `yaml:"auth,omitempty"`
	Logging    LoggingConfig   `yaml:"logging"`
	Telemetry  TelemetryConfig `yaml:"telemetry,omitempty"`
	RoutesFile string          `yaml:"routes_file,omitempty"`
	Defaults   CommandDefaults `yaml:"defaults"`
}

// APIConfig locates the backend gateway
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AuthConfig controls where the bearer token is kept
type AuthConfig struct {
	// TokenFile overrides <home>/auth.json
	TokenFile string `yaml:"token_file,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

type CommandDefaults struct {
	Format   string `yaml:"format"` // "text", "json", "yaml"
	NoColor  bool   `yaml:"no_color,omitempty"`
	PageSize int    `yaml:"page_size,omitempty"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Defaults: CommandDefaults{
			Format:   "text",
			PageSize: DefaultPageSize,
		},
	}
}

// DefaultHome returns $TASKBOARD_HOME, or ~/.taskboard
func DefaultHome() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigLoad, "failed to get home directory", err).
			WithSuggestion("Set " + EnvHome + " or pass --home")
	}
	return filepath.Join(userHome, ".taskboard"), nil
}

// Path returns the config file inside home
func Path(home string) string {
	return filepath.Join(home, ConfigFileName)
}

// TokenFile returns the token file to use: auth.token_file when set,
// otherwise <home>/auth.json.
func (c *Config) TokenFile(home string) string {
	if c.Auth.TokenFile != "" {
		return expandHome(c.Auth.TokenFile)
	}
	return filepath.Join(home, TokenFileName)
}

// Load reads the config file at path over the defaults, then applies
// environment overrides and validates. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to read config", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewFileUnmarshalError(path, "yaml", err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the config file at path over the defaults without
// environment overrides. It is what `config set` edits.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigLoad, "failed to read config", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "yaml", err)
	}
	return cfg, nil
}

// Save writes the configuration to path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write config", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables read through getenv
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid %s %q", EnvTimeout, v), err).
				WithSuggestion("Use a Go duration such as 10s or 1m")
		}
		c.API.Timeout = d
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.Defaults.PageSize == 0 {
		c.Defaults.PageSize = DefaultPageSize
	}
	if c.Defaults.Format == "" {
		c.Defaults.Format = "text"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("api.base_url %q is not an http(s) URL", c.API.BaseURL)).
			WithSuggestion("Example: taskboard config set api.base_url http://localhost:8000/api")
	}
	if c.API.Timeout < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "api.timeout must not be negative")
	}
	if !oneOf(strings.ToLower(c.Logging.Level), "debug", "info", "warn", "warning", "error") {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown logging.level %q", c.Logging.Level))
	}
	if !oneOf(c.Logging.Format, "text", "json") {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown logging.format %q", c.Logging.Format))
	}
	if !oneOf(c.Defaults.Format, "text", "json", "yaml") {
		return errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown defaults.format %q", c.Defaults.Format))
	}
	if c.Defaults.PageSize < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "defaults.page_size must not be negative")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "telemetry.endpoint is required when telemetry is enabled")
	}
	return nil
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
