package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/repository"
)

// IdentityService reconciles verified external subjects with local user rows,
// creating the row just in time on first sight.
type IdentityService struct {
	users  port.UserRepository
	events port.EventPublisher
	logger *zap.Logger
}

// NewIdentityService constructs an identity reconciler.
func NewIdentityService(users port.UserRepository, events port.EventPublisher, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{users: users, events: events, logger: logger}
}

// Reconcile maps a verified claim set to the local user, provisioning one on
// first sight. Two requests racing on the same new subject both succeed: the
// loser of the insert race re-reads the winner's row.
func (s *IdentityService) Reconcile(ctx context.Context, claims domain.Claims) (*domain.User, error) {
	if claims.Subject == "" {
		return nil, fmt.Errorf("claims subject is required")
	}

	user, err := s.users.GetByAuth0ID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load user by subject: %w", err)
	}

	created, err := s.provision(ctx, claims)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, repository.ErrDuplicate) {
		return nil, err
	}

	// Insert race or an email collision with an existing legacy account.
	user, err = s.users.GetByAuth0ID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("re-read user by subject: %w", err)
	}

	user, err = s.users.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("re-read user by email: %w", err)
	}
	return user, nil
}

func (s *IdentityService) provision(ctx context.Context, claims domain.Claims) (*domain.User, error) {
	firstName, lastName := claims.ProfileNames()
	if firstName == "" {
		firstName = claims.Email
	}

	subject := claims.Subject
	now := time.Now().UTC()
	user := domain.User{
		ID:            uuid.NewString(),
		Auth0ID:       &subject,
		Email:         claims.Email,
		FirstName:     firstName,
		LastName:      lastName,
		Role:          domain.RoleUser,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("provisioned user for external subject",
		zap.String("user_id", user.ID),
	)

	if s.events != nil {
		event := domain.UserProvisionedEvent{
			UserID:        user.ID,
			Auth0ID:       subject,
			Email:         user.Email,
			ProvisionedAt: now,
		}
		if err := s.events.PublishUserProvisioned(ctx, event); err != nil {
			s.logger.Warn("failed to publish user provisioned event",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return &user, nil
}
