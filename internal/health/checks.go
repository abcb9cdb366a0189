package health

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"

	"github.com/felixgeelhaar/taskboard/internal/api"
	"github.com/felixgeelhaar/taskboard/internal/config"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

// ConfigChecker verifies that the config file loads and validates.
type ConfigChecker struct {
	path string
	load func() (*config.Config, error)
}

// NewConfigChecker checks the config file at path
func NewConfigChecker(path string) *ConfigChecker {
	return &ConfigChecker{
		path: path,
		load: func() (*config.Config, error) { return config.Load(path) },
	}
}

// WithLoader replaces how the configuration is loaded, so that command
// line overrides are validated too.
func (c *ConfigChecker) WithLoader(load func() (*config.Config, error)) *ConfigChecker {
	c.load = load
	return c
}

func (c *ConfigChecker) Name() string { return "config" }

func (c *ConfigChecker) Check(ctx context.Context) *Result {
	cfg, err := c.load()
	if err != nil {
		return Unhealthy(err.Error()).
			WithDetail("path", c.path).
			WithSuggestion("Fix the file or run 'taskboard config edit'")
	}

	msg := "loaded"
	if _, err := os.Stat(c.path); errors.Is(err, fs.ErrNotExist) {
		msg = "no config file, using defaults"
	}
	return Healthy(msg).
		WithDetail("path", c.path).
		WithDetail("base_url", cfg.API.BaseURL)
}

// TokenFileChecker verifies the persisted token file is private.
type TokenFileChecker struct {
	path string
}

// NewTokenFileChecker checks the token file at path
func NewTokenFileChecker(path string) *TokenFileChecker {
	return &TokenFileChecker{path: path}
}

func (c *TokenFileChecker) Name() string { return "token-file" }

func (c *TokenFileChecker) Check(ctx context.Context) *Result {
	info, err := os.Stat(c.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Degraded("no stored token").
			WithDetail("path", c.path).
			WithSuggestion("Run 'taskboard auth login'")
	case err != nil:
		return Unhealthy(fmt.Sprintf("cannot stat token file: %v", err)).WithDetail("path", c.path)
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		return Degraded(fmt.Sprintf("token file is accessible by others (%#o)", mode)).
			WithDetail("path", c.path).
			WithSuggestion("chmod 600 " + c.path)
	}
	return Healthy("present").WithDetail("path", c.path)
}

// GatewayChecker probes the gateway's /health endpoint, which lives at the
// origin of the API base URL rather than under it.
type GatewayChecker struct {
	baseURL string
	opts    []api.Option
}

// NewGatewayChecker probes the gateway serving baseURL
func NewGatewayChecker(baseURL string, opts ...api.Option) *GatewayChecker {
	return &GatewayChecker{baseURL: baseURL, opts: opts}
}

func (c *GatewayChecker) Name() string { return "gateway" }

func (c *GatewayChecker) Check(ctx context.Context) *Result {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Host == "" {
		return Unhealthy(fmt.Sprintf("invalid base URL %q", c.baseURL))
	}
	origin := u.Scheme + "://" + u.Host

	resp, err := api.NewClient(origin, c.opts...).Get(ctx, "/health", nil)
	if err != nil {
		if status := api.StatusOf(err); status != 0 {
			return Degraded(fmt.Sprintf("gateway answered %d", status)).WithDetail("url", origin+"/health")
		}
		return Unhealthy("gateway unreachable: "+err.Error()).
			WithDetail("url", origin+"/health").
			WithSuggestion("Check api.base_url or set TASKBOARD_API_URL")
	}

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := resp.Decode(&body); err != nil || body.Status != "ok" {
		return Degraded("gateway did not report ok").WithDetail("url", origin+"/health")
	}
	return Healthy("reachable").
		WithDetail("url", origin+"/health").
		WithDetail("service", body.Service)
}

// Session is what SessionChecker needs from the session manager
type Session interface {
	Token() string
	CheckAuth(ctx context.Context) bool
	User() *types.User
}

// SessionChecker revalidates the stored token against the backend. A failed
// revalidation, including one cut short by the check timeout, clears the
// stored token.
type SessionChecker struct {
	session Session
}

// NewSessionChecker checks session
func NewSessionChecker(session Session) *SessionChecker {
	return &SessionChecker{session: session}
}

func (c *SessionChecker) Name() string { return "session" }

func (c *SessionChecker) Check(ctx context.Context) *Result {
	if c.session.Token() == "" {
		return Degraded("not logged in").WithSuggestion("Run 'taskboard auth login'")
	}
	if !c.session.CheckAuth(ctx) {
		msg := "the backend rejected the stored token; it was cleared"
		if ctx.Err() != nil {
			msg = "revalidation timed out; the stored token was cleared"
		}
		return Unhealthy(msg).WithSuggestion("Run 'taskboard auth login' again")
	}
	u := c.session.User()
	return Healthy("logged in as "+u.Email).
		WithDetail("user_id", u.ID).
		WithDetail("role", string(u.Role))
}
