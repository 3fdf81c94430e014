package port

import (
	"context"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

// SessionRepository deals with legacy opaque-session storage.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	GetByToken(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByToken(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID string) (int, error)
}
