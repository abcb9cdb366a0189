package store

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/taskboard/internal/api"
	"github.com/felixgeelhaar/taskboard/internal/log"
	"github.com/felixgeelhaar/taskboard/internal/metrics"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

type request struct {
	query string
	body  []byte
}

// backend emulates the gateway: replies are 200s carrying an envelope with
// a JSON-encoded string as content.
type backend struct {
	mu       sync.Mutex
	handlers map[string]func(r *http.Request) (int, any)
	requests map[string][]request
}

func newBackend(t *testing.T) (*backend, *api.Client) {
	t.Helper()
	b := &backend{
		handlers: make(map[string]func(r *http.Request) (int, any)),
		requests: make(map[string][]request),
	}
	server := httptest.NewServer(b)
	t.Cleanup(server.Close)
	return b, api.NewClient(server.URL+"/api", api.WithLogger(log.Nop()))
}

func (b *backend) on(route string, status int, content any) {
	b.handle(route, func(*http.Request) (int, any) { return status, content })
}

func (b *backend) handle(route string, fn func(r *http.Request) (int, any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[route] = fn
}

func (b *backend) calls(route string) []request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]request(nil), b.requests[route]...)
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	b.mu.Lock()
	b.requests[route] = append(b.requests[route], request{query: r.URL.RawQuery, body: body})
	fn := b.handlers[route]
	b.mu.Unlock()

	status, content := http.StatusNotFound, any(map[string]string{"detail": "Not Found"})
	if fn != nil {
		status, content = fn(r)
	}

	data, err := json.Marshal(content)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status_code": status,
		"content":     string(data),
		"headers":     map[string]string{},
	})
}

type staticUser struct{ user *types.User }

func (s staticUser) User() *types.User { return s.user }

func newMetrics() (*prometheus.Registry, *metrics.Metrics) {
	return metrics.NewRegistry()
}

func taskIDs(tasks []types.Task) []int64 {
	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
