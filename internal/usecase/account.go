package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/infra/security"
	"github.com/AntoDono/utmostatmos-app/internal/repository"
)

const (
	defaultPasswordMinLength     = 8
	defaultVerificationTokenSize = 32
)

var (
	// ErrEmailTaken indicates an account with the email already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password; the two cases must be indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrPasswordTooShort indicates the password fails the length policy.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrUserNotFound indicates the account does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// AccountConfig tunes legacy account handling.
type AccountConfig struct {
	PasswordMinLength int
	BcryptCost        int
}

// AccountService implements the legacy email/password account flows.
type AccountService struct {
	users    port.UserRepository
	sessions *SessionService
	events   port.EventPublisher
	hasher   *security.Hasher
	logger   *zap.Logger
	cfg      AccountConfig
}

// NewAccountService constructs an account service.
func NewAccountService(users port.UserRepository, sessions *SessionService, events port.EventPublisher, logger *zap.Logger, cfg AccountConfig) *AccountService {
	if cfg.PasswordMinLength <= 0 {
		cfg.PasswordMinLength = defaultPasswordMinLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		users:    users,
		sessions: sessions,
		events:   events,
		hasher:   security.NewHasher(cfg.BcryptCost),
		logger:   logger,
		cfg:      cfg,
	}
}

// SignupInput carries the legacy signup request fields.
type SignupInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Signup registers a new email/password account. The length check is the
// entire password policy; adding complexity rules would lock out accounts
// created before the migration.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, fmt.Errorf("first name is required")
	}
	if len(input.Password) < s.cfg.PasswordMinLength {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := s.hasher.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verificationToken, err := security.GenerateSecureToken(defaultVerificationTokenSize)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	hashedVerification := security.HashToken(verificationToken)

	now := time.Now().UTC()
	user := domain.User{
		ID:                uuid.NewString(),
		Email:             email,
		PasswordHash:      &passwordHash,
		FirstName:         firstName,
		Role:              domain.RoleUser,
		VerificationToken: &hashedVerification,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if lastName := strings.TrimSpace(input.LastName); lastName != "" {
		user.LastName = &lastName
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// Login verifies credentials and issues a fresh opaque session.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, *domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	if user.PasswordHash == nil {
		// Delegated-identity accounts carry no password.
		return nil, nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.VerifyPassword(password, *user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Logout revokes the session behind the token. Unknown tokens succeed.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

// GetProfile loads the account for display.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial name update.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update port.UserProfileUpdate) (*domain.User, error) {
	if update.FirstName != nil && strings.TrimSpace(*update.FirstName) == "" {
		return nil, fmt.Errorf("first name cannot be empty")
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// DeleteAccount removes the account, its sessions, and announces the deletion.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	if _, err := s.sessions.RevokeAllForUser(ctx, userID); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if s.events != nil {
		event := domain.UserDeletedEvent{
			UserID:    user.ID,
			Email:     user.Email,
			DeletedAt: time.Now().UTC(),
		}
		if err := s.events.PublishUserDeleted(ctx, event); err != nil {
			s.logger.Warn("failed to publish user deleted event",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return nil
}
