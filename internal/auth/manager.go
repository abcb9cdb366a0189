package auth

import (
	"context"

	"github.com/felixgeelhaar/taskboard/internal/api"
	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
	"github.com/felixgeelhaar/taskboard/internal/log"
	"github.com/felixgeelhaar/taskboard/internal/metrics"
	"github.com/felixgeelhaar/taskboard/pkg/taskboard/types"
)

// Backend endpoints used by the manager
const (
	loginPath = "/auth/login"
	mePath    = "/auth/me"
)

// Manager performs session transitions against the backend.
type Manager struct {
	session *Session
	client  *api.Client
	logger  *log.Logger
	metrics *metrics.Metrics
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithMetrics records auth events into m
func WithMetrics(m *metrics.Metrics) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

// NewManager creates a manager for session. The client should use session
// as its token source.
func NewManager(session *Session, client *api.Client, logger *log.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		session: session,
		client:  client,
		logger:  log.OrDefault(logger).With("component", "auth"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the managed session
func (m *Manager) Session() *Session {
	return m.session
}

// Login exchanges credentials for a token and user. On success both are
// stored together and the token is persisted. On any failure the session is
// cleared, persisted token included, and the failure is returned.
func (m *Manager) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	done := m.session.beginLoading()
	defer done()

	resp, err := m.client.Post(ctx, loginPath, nil, types.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, m.failLogin(ctx, loginError(err))
	}

	var login types.LoginResponse
	if err := resp.Decode(&login); err != nil {
		return nil, m.failLogin(ctx, err)
	}
	if login.AccessToken == "" {
		return nil, m.failLogin(ctx, tberrors.New(tberrors.ErrCodeAuthTokenMalformed, "login response carried no access token"))
	}

	if err := m.session.establish(ctx, login.AccessToken, &login.User); err != nil {
		m.metrics.RecordAuthEvent("login", false)
		m.logger.WithError(err).Warn("logged in but the token could not be persisted")
		return &login, err
	}

	m.metrics.RecordAuthEvent("login", true)
	m.logger.Info("logged in", "user_id", login.User.ID, "role", string(login.User.Role))
	return &login, nil
}

func (m *Manager) failLogin(ctx context.Context, err error) error {
	m.metrics.RecordAuthEvent("login", false)
	if clearErr := m.session.clear(ctx); clearErr != nil {
		m.logger.WithError(clearErr).Warn("failed to clear session after login failure")
	}
	m.logger.WithError(err).Info("login failed")
	return err
}

func loginError(err error) error {
	apiErr, ok := api.AsError(err)
	if !ok {
		return err
	}
	msg := apiErr.Message()
	if msg == "" {
		msg = "login rejected"
	}
	e := tberrors.Wrap(tberrors.ErrCodeAuthLoginFailed, msg, apiErr)
	if apiErr.IsUnauthorized() {
		e = e.WithSuggestion("Check your email and password")
	}
	return e
}

// CheckAuth revalidates the held token against GET /auth/me.
//
// Without a token it returns false and makes no request. On success the
// user is refreshed and true is returned. Any failure, including a timeout
// or an undecodable body, clears the session and returns false. The outcome
// is applied only if the token checked is still the held one; otherwise the
// session is left alone and its current validation state is reported.
func (m *Manager) CheckAuth(ctx context.Context) bool {
	token := m.session.Token()
	if token == "" {
		return false
	}

	done := m.session.beginLoading()
	defer done()

	user, err := m.fetchMe(ctx)
	if err != nil {
		m.metrics.RecordAuthEvent("check", false)
		cleared, clearErr := m.session.invalidate(ctx, token)
		if clearErr != nil {
			m.logger.WithError(clearErr).Warn("failed to remove persisted token")
		}
		if !cleared {
			return m.session.Snapshot().Validated()
		}
		m.logger.WithError(err).Info("session revalidation failed, session cleared")
		return false
	}

	if !m.session.validate(token, user) {
		m.logger.Debug("session changed during revalidation, result discarded")
		return m.session.Snapshot().Validated()
	}
	m.metrics.RecordAuthEvent("check", true)
	m.logger.Debug("session revalidated", "user_id", user.ID)
	return true
}

func (m *Manager) fetchMe(ctx context.Context) (*types.User, error) {
	resp, err := m.client.Get(ctx, mePath, nil)
	if err != nil {
		return nil, err
	}
	var user types.User
	if err := resp.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears token and user and removes the persisted token. It never
// contacts the backend.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.session.clear(ctx)
	m.metrics.RecordAuthEvent("logout", err == nil)
	if err != nil {
		return err
	}
	m.logger.Info("logged out")
	return nil
}

// IsAuthenticated reports whether a token is held
func (m *Manager) IsAuthenticated() bool { return m.session.IsAuthenticated() }

// User returns the validated user, or nil
func (m *Manager) User() *types.User { return m.session.User() }

// Token returns the held token
func (m *Manager) Token() string { return m.session.Token() }

// Loading reports whether a login or revalidation is in flight
func (m *Manager) Loading() bool { return m.session.Loading() }
