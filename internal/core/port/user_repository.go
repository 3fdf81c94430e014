package port

import (
	"context"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

// UserProfileUpdate carries a partial profile update; nil fields are left untouched.
type UserProfileUpdate struct {
	FirstName *string
	LastName  *string
}

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update UserProfileUpdate) (*domain.User, error)
	AddScore(ctx context.Context, id string, points int) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	TopByScore(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}
