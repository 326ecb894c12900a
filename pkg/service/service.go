package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/isoforge/pkg/logger"
	"github.com/dmitrymomot/isoforge/pkg/session"
)

// Service binds exactly one session and one logger for the duration of an operation.
type Service struct {
	session *session.Session
	logger  *slog.Logger
}

// New creates a Service. A nil session is treated as anonymous;
// a nil logger discards output.
func New(sess *session.Session, log *slog.Logger) *Service {
	if log == nil {
		log = logger.NewNope()
	}
	return &Service{session: sess, logger: log}
}

// Session returns the bound session (nil for anonymous).
func (s *Service) Session() *session.Session {
	return s.session
}

// Logger returns the bound logger.
func (s *Service) Logger() *slog.Logger {
	return s.logger
}

// CheckFunc decides whether the current session may proceed.
type CheckFunc func(ctx context.Context, svc *Service, sess *session.Session) (bool, error)

// Predicate is either a literal decision or a callback.
// The zero value denies.
type Predicate struct {
	check   CheckFunc
	literal bool
}

// Allow returns a predicate with a fixed decision.
func Allow(ok bool) Predicate {
	return Predicate{literal: ok}
}

// Check returns a predicate evaluated by fn.
func Check(fn CheckFunc) Predicate {
	return Predicate{check: fn}
}

// Authorize evaluates p against the bound session.
// Returns nil when allowed, ErrNotAuthorized when denied, and an error wrapping
// ErrCheckFailed when the callback itself fails.
func (s *Service) Authorize(ctx context.Context, p Predicate) error {
	ok, err := s.resolve(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, p Predicate) (ok bool, err error) {
	if p.check == nil {
		return p.literal, nil
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("%w: panic: %v", ErrCheckFailed, r)
		}
	}()

	ok, err = p.check(ctx, s, s.session)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCheckFailed, err)
	}
	return ok, nil
}
