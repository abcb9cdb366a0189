package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskboard/internal/router"
)

func TestNavigate(t *testing.T) {
	t.Run("worker is sent home from admin pages", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-walt")

		out, err := f.run("navigate", "/admin/users", "-o", "json")
		require.NoError(t, err)

		view := decodeJSON[navigationView](t, out)
		assert.Equal(t, router.Redirect, view.Decision.Action)
		assert.Equal(t, router.ReasonAdminRequired, view.Decision.Reason)
		assert.Equal(t, "/", view.Destination)
		assert.Equal(t, []string{"/admin/users", "/"}, view.Hops)
	})

	t.Run("anonymous user is sent to login", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.run("navigate", "/tasks/7")
		require.NoError(t, err)
		assert.Contains(t, out, "redirect")
		assert.Contains(t, out, "/tasks/7 -> /login")
		assert.Zero(t, f.gw.total())
	})

	t.Run("admin proceeds", func(t *testing.T) {
		f := newFixture(t)
		f.loginAs("tok-alice")

		out, err := f.run("navigate", "/admin/users", "-o", "json")
		require.NoError(t, err)

		view := decodeJSON[navigationView](t, out)
		assert.True(t, view.Decision.Allowed())
		assert.Equal(t, router.ReasonAuthorized, view.Decision.Reason)
		assert.Equal(t, []string{"/admin/users"}, view.Hops)
	})

	t.Run("route table", func(t *testing.T) {
		f := newFixture(t)

		out, err := f.run("navigate", "--routes", "-o", "json")
		require.NoError(t, err)

		view := decodeJSON[routeTableView](t, out)
		require.NotEmpty(t, view.Routes)
		paths := make([]string, 0, len(view.Routes))
		for _, r := range view.Routes {
			paths = append(paths, r.Path)
		}
		assert.Contains(t, paths, router.LoginPath)
		assert.Contains(t, paths, "/admin/users")
	})

	t.Run("path argument is required", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.run("navigate")
		require.Error(t, err)
	})
}

func TestRoutePath(t *testing.T) {
	tests := []struct {
		pattern string
		args    []string
		want    string
	}{
		{pattern: "/", want: "/"},
		{pattern: "/tasks/:id", args: []string{"7"}, want: "/tasks/7"},
		{pattern: "/tasks/:id", args: []string{"7", "3"}, want: "/tasks/7"},
		{pattern: "/tasks/:id", want: "/tasks/:id"},
		{pattern: "/a/:x/b/:y", args: []string{"1", "2"}, want: "/a/1/b/2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, routePath(tt.pattern, tt.args), tt.pattern)
	}
}
