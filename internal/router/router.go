package router

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/internal/log"
	"github.com/felixgeelhaar/taskboard/internal/metrics"
	"github.com/felixgeelhaar/taskboard/internal/telemetry"
)

// MaxRedirects bounds how many redirects Follow will chase
const MaxRedirects = 3

// Gate decides whether a navigation may proceed.
//
// The route table is fixed at construction. Navigations are serialized so a
// revalidation triggered by one navigation completes before the next is
// evaluated.
type Gate struct {
	mu      sync.Mutex
	routes  []compiledRoute
	auth    Authenticator
	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures a Gate
type Option func(*Gate)

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// WithMetrics records decisions into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

type compiledRoute struct {
	route    Route
	segments []string
	literals int
}

// New creates a gate over routes. A nil or empty table uses DefaultRoutes.
func New(routes []Route, auth Authenticator, opts ...Option) (*Gate, error) {
	if auth == nil {
		return nil, errors.New(errors.ErrCodeNavRouteConfig, "gate needs an authenticator")
	}
	if len(routes) == 0 {
		routes = DefaultRoutes()
	}
	if err := ValidateRoutes(routes); err != nil {
		return nil, err
	}

	g := &Gate{auth: auth}
	for _, r := range routes {
		segs := splitPath(normalizePath(r.Path))
		literals := 0
		for _, s := range segs {
			if !strings.HasPrefix(s, ":") {
				literals++
			}
		}
		g.routes = append(g.routes, compiledRoute{route: r, segments: segs, literals: literals})
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = log.OrDefault(g.logger).With("component", "router")
	return g, nil
}

// Routes returns a copy of the route table
func (g *Gate) Routes() []Route {
	out := make([]Route, len(g.routes))
	for i, r := range g.routes {
		out[i] = r.route
	}
	return out
}

// Resolve finds the route for path. Literal segments win over :param
// segments, so /tasks/new matches NewTask rather than TaskDetail. It returns
// nil when no route matches.
func (g *Gate) Resolve(path string) (*Route, map[string]string) {
	segs := splitPath(normalizePath(path))

	var best *compiledRoute
	var bestParams map[string]string
	for i := range g.routes {
		cr := &g.routes[i]
		params, ok := match(cr.segments, segs)
		if !ok {
			continue
		}
		if best == nil || cr.literals > best.literals {
			best = cr
			bestParams = params
		}
	}
	if best == nil {
		return nil, nil
	}
	r := best.route
	return &r, bestParams
}

// Navigate evaluates a navigation to path:
//
//   - public route: proceed, except /login with a token held goes to /
//   - protected route without a token: redirect to /login
//   - token held but unvalidated: revalidate and wait; failure goes to /login
//   - admin route for a non-admin: redirect to /
//
// Paths matching no route are treated as public.
func (g *Gate) Navigate(ctx context.Context, path string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	path = normalizePath(path)
	ctx, span := telemetry.StartNavigationSpan(ctx, path)
	defer span.End()

	d := g.decide(ctx, path)

	span.SetAttributes(
		attribute.String("navigation.route", d.RouteName()),
		attribute.String("navigation.action", string(d.Action)),
		attribute.String("navigation.target", d.Target),
	)
	telemetry.RecordSuccess(span)
	g.metrics.RecordNavigation(d.RouteName(), string(d.Action))
	g.logger.DebugContext(ctx, "navigation decided",
		"path", d.Path,
		"route", d.RouteName(),
		"action", string(d.Action),
		"target", d.Target,
		"reason", d.Reason,
	)
	return d
}

func (g *Gate) decide(ctx context.Context, path string) Decision {
	route, params := g.Resolve(path)
	d := Decision{Path: path, Route: route, Params: params}

	if route == nil {
		return proceed(d, ReasonUnmatched)
	}

	if !route.RequiresAuth {
		if path == LoginPath && g.auth.IsAuthenticated() {
			return redirect(d, HomePath, ReasonAlreadyAuthenticated)
		}
		return proceed(d, ReasonPublic)
	}

	if !g.auth.IsAuthenticated() {
		return redirect(d, LoginPath, ReasonAuthRequired)
	}

	user := g.auth.User()
	if user == nil {
		if !g.auth.CheckAuth(ctx) {
			return redirect(d, LoginPath, ReasonRevalidationFailed)
		}
		user = g.auth.User()
		if user == nil {
			return redirect(d, LoginPath, ReasonRevalidationFailed)
		}
	}

	if route.RequiresAdmin && !user.IsAdmin() {
		return redirect(d, HomePath, ReasonAdminRequired)
	}
	return proceed(d, ReasonAuthorized)
}

// Follow navigates to path and chases redirects until a navigation
// proceeds. It returns the final decision together with every path visited.
func (g *Gate) Follow(ctx context.Context, path string) (Decision, []string, error) {
	visited := []string{normalizePath(path)}
	d := g.Navigate(ctx, path)

	for hops := 0; !d.Allowed(); hops++ {
		if hops == MaxRedirects {
			return d, visited, errors.New(errors.ErrCodeNavRouteConfig,
				fmt.Sprintf("more than %d redirects starting at %s", MaxRedirects, visited[0]))
		}
		visited = append(visited, d.Target)
		d = g.Navigate(ctx, d.Target)
	}
	return d, visited, nil
}

func proceed(d Decision, reason string) Decision {
	d.Action = Proceed
	d.Reason = reason
	return d
}

func redirect(d Decision, target, reason string) Decision {
	d.Action = Redirect
	d.Target = target
	d.Reason = reason
	return d
}

func match(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = segs[i]
			continue
		}
		if p != segs[i] {
			return nil, false
		}
	}
	return params, true
}

// normalizePath strips query and fragment, ensures a leading slash and drops
// a trailing one.
func normalizePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	return path
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
