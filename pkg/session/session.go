package session

import (
	"errors"
	"slices"
	"time"
)

// Session carries the identity and authentication state of a visitor.
// The dispatch core only reads it: requests borrow a session for their whole
// lifetime and hand it to authorization callbacks untouched.
type Session struct {
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	UserID    *string        `json:"user_id,omitempty"` // nil = anonymous session
	Values    map[string]any `json:"values,omitempty"`
	ID        string         `json:"id"`
	Token     string         `json:"token"` // Cookie token (different from ID)
	Roles     []string       `json:"roles,omitempty"`
}

// New creates a session with the given ID and token.
func New(id, token string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		Token:     token,
		Values:    make(map[string]any),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

// IsAuthenticated returns true if the session has an associated user.
// A nil session is anonymous.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != nil && *s.UserID != ""
}

// User returns the user ID or an empty string for anonymous sessions.
func (s *Session) User() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return *s.UserID
}

// HasRole reports whether the session was granted the role.
func (s *Session) HasRole(role string) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.Roles, role)
}

// GetValue retrieves a value from the session.
func (s *Session) GetValue(key string) (any, bool) {
	if s == nil || s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// IsExpired returns true if the session has expired.
// Sessions without an expiry never expire.
func (s *Session) IsExpired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}

// Value is a typed helper to retrieve session values with type safety.
// Returns an error if the key doesn't exist or type assertion fails.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}

	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, errors.New("session: type mismatch for key: " + key)
	}

	return typed, nil
}

// ValueOr returns a default value if the key doesn't exist or has another type.
func ValueOr[T any](s *Session, key string, defaultVal T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return defaultVal
	}
	return val
}
