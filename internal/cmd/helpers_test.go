package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskboard/internal/auth"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

var (
	alice = types.User{ID: 1, Email: "alice@example.com", FullName: "Alice Admin", Role: types.RoleAdmin, IsActive: true}
	walt  = types.User{ID: 3, Email: "walt@example.com", FullName: "Walt Worker", Role: types.RoleWorker, IsActive: true}
)

type call struct {
	query string
	body  []byte
}

// gateway emulates the backend behind its gateway: every reply is a 200
// carrying an envelope whose content is a JSON-encoded string.
type gateway struct {
	mu       sync.Mutex
	tokens   map[string]types.User
	handlers map[string]func(r *http.Request, body []byte) (int, any)
	calls    map[string][]call
}

func newGateway(t *testing.T) (*gateway, string) {
	t.Helper()
	g := &gateway{
		tokens:   map[string]types.User{"tok-alice": alice, "tok-walt": walt},
		handlers: make(map[string]func(*http.Request, []byte) (int, any)),
		calls:    make(map[string][]call),
	}

	g.handle("GET /api/auth/me", func(r *http.Request, _ []byte) (int, any) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if user, ok := g.tokens[token]; ok {
			return http.StatusOK, user
		}
		return http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"}
	})
	g.handle("POST /api/auth/login", func(_ *http.Request, body []byte) (int, any) {
		var req types.LoginRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return http.StatusUnprocessableEntity, map[string]string{"detail": err.Error()}
		}
		if req.Email == alice.Email && req.Password == "s3cret" {
			return http.StatusOK, types.LoginResponse{AccessToken: "tok-alice", TokenType: "bearer", User: alice}
		}
		return http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"}
	})

	server := httptest.NewServer(g)
	t.Cleanup(server.Close)
	return g, server.URL + "/api"
}

func (g *gateway) on(route string, status int, content any) {
	g.handle(route, func(*http.Request, []byte) (int, any) { return status, content })
}

func (g *gateway) handle(route string, fn func(r *http.Request, body []byte) (int, any)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[route] = fn
}

func (g *gateway) callsTo(route string) []call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]call(nil), g.calls[route]...)
}

func (g *gateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		n += len(c)
	}
	return n
}

func (g *gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)

	g.mu.Lock()
	g.calls[route] = append(g.calls[route], call{query: r.URL.RawQuery, body: body})
	fn := g.handlers[route]
	g.mu.Unlock()

	status, content := http.StatusNotFound, any(map[string]string{"detail": "Not Found"})
	if fn != nil {
		status, content = fn(r, body)
	}

	data, err := json.Marshal(content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status_code": status,
		"content":     string(data),
	})
}

// fixture runs the CLI against a gateway with an isolated home directory
type fixture struct {
	t      *testing.T
	gw     *gateway
	apiURL string
	home   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("CI", "true")
	t.Setenv("NO_COLOR", "1")
	t.Setenv("TASKBOARD_API_URL", "")
	t.Setenv("TASKBOARD_TIMEOUT", "")
	t.Setenv("TASKBOARD_LOG_LEVEL", "")

	gw, apiURL := newGateway(t)
	return &fixture{t: t, gw: gw, apiURL: apiURL, home: t.TempDir()}
}

func (f *fixture) run(args ...string) (string, error) {
	return f.runWithInput("", args...)
}

func (f *fixture) runWithInput(stdin string, args ...string) (string, error) {
	f.t.Helper()
	all := append([]string{"--home", f.home, "--api-url", f.apiURL}, args...)
	stdout, _, err := execute(f.t, stdin, all...)
	return stdout, err
}

func (f *fixture) tokenStore() *auth.FileStore {
	return auth.NewFileStore(filepath.Join(f.home, "auth.json"))
}

func (f *fixture) loginAs(token string) {
	f.t.Helper()
	require.NoError(f.t, f.tokenStore().Save(context.Background(), token))
}

func (f *fixture) storedToken() string {
	f.t.Helper()
	token, err := f.tokenStore().Load(context.Background())
	require.NoError(f.t, err)
	return token
}

// execute runs the root command once with fresh flag values
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default so runs do not leak into
// each other through the package-level commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}
