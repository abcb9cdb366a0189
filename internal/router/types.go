package router

import (
	"context"

	"github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

// Route describes one navigable view and what it takes to enter it.
type Route struct {
	Name          string `yaml:"name" json:"name"`
	Path          string `yaml:"path" json:"path"`
	RequiresAuth  bool   `yaml:"requires_auth" json:"requires_auth"`
	RequiresAdmin bool   `yaml:"requires_admin" json:"requires_admin"`
}

// Action is the outcome of a navigation
type Action string

const (
	// Proceed lets the navigation through
	Proceed Action = "proceed"

	// Redirect sends the navigation elsewhere
	Redirect Action = "redirect"
)

// Reasons attached to decisions
const (
	ReasonPublic               = "public route"
	ReasonUnmatched            = "no matching route"
	ReasonAuthorized           = "authorized"
	ReasonAuthRequired         = "authentication required"
	ReasonRevalidationFailed   = "session could not be revalidated"
	ReasonAdminRequired        = "admin role required"
	ReasonAlreadyAuthenticated = "already authenticated"
)

// Decision is computed for each navigation and never stored.
type Decision struct {
	// Path is the requested path after normalization
	Path string `json:"path" yaml:"path"`

	Action Action `json:"action" yaml:"action"`

	// Target is the redirect destination; empty when proceeding
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Route is the matched route, nil for unknown paths
	Route *Route `json:"route,omitempty" yaml:"route,omitempty"`

	// Params holds values bound to :param segments
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`

	Reason string `json:"reason" yaml:"reason"`
}

// Allowed reports whether the navigation may proceed
func (d Decision) Allowed() bool {
	return d.Action == Proceed
}

// RouteName returns the matched route's name, or "" when unmatched
func (d Decision) RouteName() string {
	if d.Route == nil {
		return ""
	}
	return d.Route.Name
}

// Err returns a NAV-001 error describing a redirect, or nil when the
// navigation may proceed.
func (d Decision) Err() error {
	if d.Allowed() {
		return nil
	}
	err := errors.NewRedirectError(d.Path, d.Target, d.Reason)
	switch d.Reason {
	case ReasonAuthRequired, ReasonRevalidationFailed:
		err = err.WithSuggestion("Run 'taskboard auth login' to authenticate")
	case ReasonAdminRequired:
		err = err.WithSuggestion("Ask an administrator for access")
	case ReasonAlreadyAuthenticated:
		err = err.WithSuggestion("Run 'taskboard auth logout' first to sign in as someone else")
	}
	return err
}

// Authenticator is the part of the session manager the gate consults.
type Authenticator interface {
	// IsAuthenticated reports whether a token is held
	IsAuthenticated() bool

	// User returns the validated user, nil while the token is unvalidated
	User() *types.User

	// CheckAuth revalidates the held token and blocks until done
	CheckAuth(ctx context.Context) bool
}
