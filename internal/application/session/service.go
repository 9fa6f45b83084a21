package session

import (
	"context"
	"errors"

	"github.com/marchworks/stockroom/internal/domain/user"
	"github.com/marchworks/stockroom/internal/observability"
)

var (
	ErrBadCredentials = user.ErrBadCredentials
	ErrNoSession      = errors.New("session: no active session")
	ErrSessionActive  = errors.New("session: a session is already active")
	ErrForbidden      = errors.New("session: operation not permitted for role")
)

// Service holds the single active session. Role checks happen here, once,
// at the boundary; the layers below never inspect roles.
type Service struct {
	roster  *user.Roster
	current *user.User
	log     observability.Logger
}

func NewService(roster *user.Roster, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		roster: roster,
		log:    logger.With(observability.F("service", "session-service")),
	}
}

// Login authenticates and activates the session. Exactly one session may
// be active at a time.
func (s *Service) Login(ctx context.Context, username, secret string) (user.User, error) {
	_ = ctx
	if s.current != nil {
		return user.User{}, ErrSessionActive
	}
	u, err := s.roster.Authenticate(username, secret)
	if err != nil {
		s.log.Warn("login_failed", observability.F("username", username))
		return user.User{}, err
	}
	s.current = &u
	s.log.Info("login_succeeded",
		observability.F("username", u.Username),
		observability.F("role", string(u.Role)),
	)
	return u, nil
}

func (s *Service) Logout(ctx context.Context) error {
	_ = ctx
	if s.current == nil {
		return ErrNoSession
	}
	s.log.Info("logout", observability.F("username", s.current.Username))
	s.current = nil
	return nil
}

// Current returns the authenticated user, if any.
func (s *Service) Current() (user.User, bool) {
	if s.current == nil {
		return user.User{}, false
	}
	return *s.current, true
}

// RequireRole gates an operation on the active session's role.
func (s *Service) RequireRole(role user.Role) (user.User, error) {
	if s.current == nil {
		return user.User{}, ErrNoSession
	}
	if s.current.Role != role {
		return user.User{}, ErrForbidden
	}
	return *s.current, nil
}
