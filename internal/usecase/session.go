package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/infra/security"
	"github.com/AntoDono/utmostatmos-app/internal/repository"
)

// ErrSessionNotFound covers both a token with no session row and a session
// past its expiry. Callers must present the two identically so a probe
// cannot distinguish "never existed" from "expired".
var ErrSessionNotFound = errors.New("session not found or expired")

const (
	defaultSessionTTL        = 7 * 24 * time.Hour
	defaultSessionTokenBytes = 32
)

// SessionConfig tunes opaque-session issuance.
type SessionConfig struct {
	TTL        time.Duration
	TokenBytes int
}

// SessionService issues and validates legacy opaque sessions.
type SessionService struct {
	sessions port.SessionRepository
	users    port.UserRepository
	cfg      SessionConfig
	now      func() time.Time
}

// NewSessionService constructs a session service.
func NewSessionService(sessions port.SessionRepository, users port.UserRepository, cfg SessionConfig) *SessionService {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	if cfg.TokenBytes <= 0 {
		cfg.TokenBytes = defaultSessionTokenBytes
	}
	return &SessionService{
		sessions: sessions,
		users:    users,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Issue creates a fresh session for the user and returns its opaque token.
func (s *SessionService) Issue(ctx context.Context, userID string) (*domain.Session, error) {
	token, err := security.GenerateSecureToken(s.cfg.TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now()
	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	return &session, nil
}

// Validate resolves an opaque token to its user. Expired sessions are
// deleted eagerly during the read, then reported exactly like missing ones.
func (s *SessionService) Validate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, ErrSessionNotFound
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	return user, nil
}

// Revoke deletes the session identified by the token. Revoking an unknown
// token is a no-op; logout must be idempotent.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RevokeAllForUser drops every session belonging to the user.
func (s *SessionService) RevokeAllForUser(ctx context.Context, userID string) (int, error) {
	count, err := s.sessions.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return count, nil
}
