package router

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskboard/internal/errors"
)

// Well-known paths
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// RouteTable is the on-disk form of a route table
type RouteTable struct {
	Routes []Route `yaml:"routes"`
}

// DefaultRoutes returns the built-in route table
func DefaultRoutes() []Route {
	return []Route{
		{Name: "Login", Path: LoginPath},
		{Name: "Dashboard", Path: HomePath, RequiresAuth: true},
		{Name: "NewTask", Path: "/tasks/new", RequiresAuth: true},
		{Name: "TaskDetail", Path: "/tasks/:id", RequiresAuth: true},
		{Name: "Users", Path: "/admin/users", RequiresAuth: true, RequiresAdmin: true},
	}
}

// LoadRoutes loads a route table from a YAML file:
//
//	routes:
//	  - name: Dashboard
//	    path: /
//	    requires_auth: true
func LoadRoutes(path string) ([]Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read route table", err)
	}

	var table RouteTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "yaml", err)
	}

	if err := ValidateRoutes(table.Routes); err != nil {
		return nil, err
	}
	return table.Routes, nil
}

// ValidateRoutes checks a route table for mistakes that would make
// navigation ambiguous or unsafe.
func ValidateRoutes(routes []Route) error {
	if len(routes) == 0 {
		return errors.New(errors.ErrCodeNavRouteConfig, "route table is empty")
	}

	names := make(map[string]bool, len(routes))
	paths := make(map[string]bool, len(routes))
	hasLogin := false

	for i, r := range routes {
		if r.Name == "" {
			return errors.New(errors.ErrCodeNavRouteConfig, fmt.Sprintf("route %d has no name", i))
		}
		if !strings.HasPrefix(r.Path, "/") {
			return errors.New(errors.ErrCodeNavRouteConfig, fmt.Sprintf("route %s: path %q must start with /", r.Name, r.Path))
		}
		if r.RequiresAdmin && !r.RequiresAuth {
			return errors.New(errors.ErrCodeNavRouteConfig, fmt.Sprintf("route %s requires admin but not auth", r.Name)).
				WithSuggestion("Set requires_auth: true on admin routes")
		}
		if names[r.Name] {
			return errors.New(errors.ErrCodeNavRouteConfig, fmt.Sprintf("duplicate route name %s", r.Name))
		}
		p := normalizePath(r.Path)
		if paths[p] {
			return errors.New(errors.ErrCodeNavRouteConfig, fmt.Sprintf("duplicate route path %s", r.Path))
		}
		names[r.Name] = true
		paths[p] = true

		if p == LoginPath {
			if r.RequiresAuth {
				return errors.New(errors.ErrCodeNavRouteConfig, "the login route must be public")
			}
			hasLogin = true
		}
	}

	if !hasLogin {
		return errors.New(errors.ErrCodeNavRouteConfig, "route table has no "+LoginPath+" route")
	}
	return nil
}
