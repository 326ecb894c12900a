package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

const defaultSessionTTL = 30 * 24 * time.Hour

// ErrNotServerRequest is returned by operations that need an HTTP response.
var ErrNotServerRequest = errors.New("isoforge: operation requires a server request")

// SessionManager resolves sessions from the token cookie and manages their
// lifecycle. The core itself only reads sessions.
type SessionManager struct {
	store  session.Store
	cookie *session.Cookie
	logger *slog.Logger
	ttl    time.Duration
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// WithSessionCookie sets the token cookie configuration.
func WithSessionCookie(cfg session.CookieConfig) SessionOption {
	return func(m *SessionManager) {
		m.cookie = session.NewCookie(cfg)
	}
}

// WithSessionTTL sets the lifetime of new sessions.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// NewSessionManager creates a SessionManager backed by store.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		store:  store,
		cookie: session.NewCookie(session.CookieConfig{}),
		logger: logger.NewNope(),
		ttl:    defaultSessionTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *SessionManager) setLogger(l *slog.Logger) {
	if l != nil {
		m.logger = l
	}
}

// Store returns the backing store.
func (m *SessionManager) Store() session.Store {
	return m.store
}

// Load returns the session referenced by r, or nil for anonymous visitors.
// Missing, expired and forged tokens are all treated as anonymous.
func (m *SessionManager) Load(r *http.Request) *session.Session {
	if m == nil {
		return nil
	}

	token, err := m.cookie.Token(r)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			m.logger.DebugContext(r.Context(), "session cookie rejected", "error", err)
		}
		return nil
	}

	sess, err := m.store.Get(r.Context(), token)
	switch {
	case err == nil:
		return sess
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired), errors.Is(err, session.ErrInvalidToken):
		return nil
	default:
		m.logger.ErrorContext(r.Context(), "session lookup failed", "error", err)
		return nil
	}
}

// Login creates an authenticated session for userID and sets its cookie.
// Only server requests can log in; the browser has no response to carry the cookie.
func (m *SessionManager) Login(req Request, userID string, roles ...string) (*session.Session, error) {
	sr, ok := req.(*serverRequest)
	if !ok {
		return nil, ErrNotServerRequest
	}

	sess := session.New("", "", time.Now().Add(m.ttl))
	sess.UserID = &userID
	sess.Roles = roles
	if err := m.store.Create(sr, sess); err != nil {
		return nil, err
	}

	m.cookie.Write(sr.w, sess.Token, sess.ExpiresAt)
	return sess, nil
}

// Logout deletes the request session and clears its cookie.
func (m *SessionManager) Logout(req Request) error {
	sr, ok := req.(*serverRequest)
	if !ok {
		return ErrNotServerRequest
	}

	m.cookie.Clear(sr.w)
	if sess := req.Session(); sess != nil {
		return m.store.Delete(context.WithoutCancel(sr), sess.Token)
	}
	return nil
}
