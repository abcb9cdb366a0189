// Package store holds client-side views of backend resources.
//
// Each store wraps the HTTP client and keeps the last fetched list in memory.
// Failures are returned as values; a failed list fetch also degrades the held
// list to empty so stale data is never shown as current.
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/felixgeelhaar/taskboard/internal/api"
	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/internal/log"
	"github.com/felixgeelhaar/taskboard/internal/metrics"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

var errEmptyComment = stderrors.New("comment text is empty")

// Default paging for list fetches
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// UserSource exposes the current session user. Stores only read it.
type UserSource interface {
	User() *types.User
}

// Option configures a store
type Option func(*base)

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(b *base) { b.logger = l }
}

// WithMetrics records store operations into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *base) { b.metrics = m }
}

type base struct {
	name    string
	client  *api.Client
	users   UserSource
	logger  *log.Logger
	metrics *metrics.Metrics

	loadMu  sync.Mutex
	loading int
}

func (b *base) init(name string, client *api.Client, users UserSource, opts []Option) {
	b.name = name
	b.client = client
	b.users = users
	for _, opt := range opts {
		opt(b)
	}
	b.logger = log.OrDefault(b.logger).With("component", "store", "store", name)
}

// Loading reports whether a list fetch is in flight
func (b *base) Loading() bool {
	b.loadMu.Lock()
	defer b.loadMu.Unlock()
	return b.loading > 0
}

func (b *base) beginLoading() func() {
	b.loadMu.Lock()
	b.loading++
	b.loadMu.Unlock()
	return func() {
		b.loadMu.Lock()
		b.loading--
		b.loadMu.Unlock()
	}
}

// record counts op and, on failure, logs it and wraps it as STORE-001
// unless it already carries a code or a backend status.
func (b *base) record(ctx context.Context, op string, err error) error {
	b.metrics.RecordStoreOperation(b.name, op, err == nil)
	if err == nil {
		return nil
	}
	b.logger.WithError(err).DebugContext(ctx, "store operation failed", "operation", op)
	if _, ok := api.AsError(err); ok {
		return err
	}
	if tberrors.CodeOf(err) != "" {
		return err
	}
	return tberrors.Wrap(tberrors.ErrCodeStoreRequestFailed, fmt.Sprintf("%s %s failed", b.name, op), err)
}

// sessionUser returns the session user or a STORE-002 error naming op
func (b *base) sessionUser(op string) (*types.User, error) {
	var u *types.User
	if b.users != nil {
		u = b.users.User()
	}
	if u == nil {
		return nil, tberrors.New(tberrors.ErrCodeStoreNoUser, op+" requires a logged in user").
			WithSuggestion("Run 'taskboard auth login' first")
	}
	return u, nil
}

func invalidInput(err error) error {
	return tberrors.Wrap(tberrors.ErrCodeStoreInvalidInput, err.Error(), err)
}

func pageQuery(skip, limit int) url.Values {
	if skip < 0 {
		skip = DefaultSkip
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return url.Values{
		"skip":  {strconv.Itoa(skip)},
		"limit": {strconv.Itoa(limit)},
	}
}

func userQuery(u *types.User) url.Values {
	return url.Values{"user_id": {strconv.FormatInt(u.ID, 10)}}
}

// decodeList decodes a list payload; an empty or null body is an empty list.
func decodeList[T any](resp *api.Response) ([]T, error) {
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return []T{}, nil
	}
	var out []T
	if err := resp.Decode(&out); err != nil {
		return []T{}, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
