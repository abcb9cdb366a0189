package auth

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

// Snapshot is a consistent view of the session at one instant.
type Snapshot struct {
	Token   string
	User    *types.User
	Loading bool
}

// Validated reports whether the token has been confirmed by the backend
func (s Snapshot) Validated() bool {
	return s.Token != "" && s.User != nil
}

// Session is the process-wide authentication state.
//
// The token and user always change together under one lock, and the user is
// never set without a token. Persistence goes through the TokenStore while
// the lock is held so the stored token never lags behind memory.
type Session struct {
	mu      sync.RWMutex
	token   string
	user    *types.User
	loading int
	store   TokenStore
}

// NewSession creates a session and restores the persisted token, if any.
// The restored token is unvalidated: User() stays nil until CheckAuth or
// Login succeeds. A store that cannot be read yields an empty session along
// with the error.
func NewSession(ctx context.Context, store TokenStore) (*Session, error) {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{store: store}

	token, err := store.Load(ctx)
	if err != nil {
		return s, err
	}
	s.token = token
	return s, nil
}

// Token returns the held bearer token, or "" when logged out.
// It implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the validated user, or nil
func (s *Session) User() *types.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// IsAuthenticated reports whether a token is held. The token may not have
// been validated yet.
func (s *Session) IsAuthenticated() bool {
	return s.Token() != ""
}

// Loading reports whether a login or revalidation is in flight
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

// Snapshot returns token, user and loading read under a single lock
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Token:   s.token,
		User:    copyUser(s.user),
		Loading: s.loading > 0,
	}
}

// Store returns the backing token store
func (s *Session) Store() TokenStore {
	return s.store
}

func (s *Session) beginLoading() func() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.loading--
			s.mu.Unlock()
		})
	}
}

// establish installs a freshly issued token and its user, then persists the
// token. Memory is updated even when persisting fails.
func (s *Session) establish(ctx context.Context, token string, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.user = copyUser(user)
	return s.store.Save(ctx, token)
}

// validate sets the user for token, provided token is still the held one.
func (s *Session) validate(token string, user *types.User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != token || token == "" {
		return false
	}
	s.user = copyUser(user)
	return true
}

// clear drops token and user and removes the persisted token
func (s *Session) clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(ctx)
}

// invalidate clears the session only if token is still the held one. It
// reports whether anything was cleared.
func (s *Session) invalidate(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != token {
		return false, nil
	}
	return true, s.clearLocked(ctx)
}

func (s *Session) clearLocked(ctx context.Context) error {
	s.token = ""
	s.user = nil
	return s.store.Delete(ctx)
}

func copyUser(u *types.User) *types.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
