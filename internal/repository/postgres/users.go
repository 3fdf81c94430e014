package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/repository"
)

var userColumns = []string{
	"id",
	"auth0_id",
	"email",
	"password_hash",
	"first_name",
	"last_name",
	"role",
	"leaderboard_score",
	"email_verified",
	"verification_token",
	"password_reset_token",
	"created_at",
	"updated_at",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new user row. A duplicate email or auth0 subject yields
// repository.ErrDuplicate so callers can recover from provisioning races.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	query := r.builder.Insert("atmos.users").
		Columns(
			"id",
			"auth0_id",
			"email",
			"password_hash",
			"first_name",
			"last_name",
			"role",
			"leaderboard_score",
			"email_verified",
			"verification_token",
			"password_reset_token",
			"created_at",
			"updated_at",
		).
		Values(
			user.ID,
			user.Auth0ID,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.Role,
			user.LeaderboardScore,
			user.EmailVerified,
			user.VerificationToken,
			user.PasswordResetToken,
			user.CreatedAt,
			user.UpdatedAt,
		)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *UserRepository) getBy(ctx context.Context, pred squirrel.Eq, what string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("atmos.users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by %s sql: %w", what, err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Auth0ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.LeaderboardScore,
		&user.EmailVerified,
		&user.VerificationToken,
		&user.PasswordResetToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user by %s: %w", what, err)
	}

	return &user, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"id": id}, "id")
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"email": email}, "email")
}

// GetByAuth0ID retrieves a user by external identity-provider subject.
func (r *UserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	return r.getBy(ctx, squirrel.Eq{"auth0_id": auth0ID}, "auth0 id")
}

// UpdateProfile applies a partial profile update and returns the updated row.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update port.UserProfileUpdate) (*domain.User, error) {
	query := r.builder.Update("atmos.users").
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(userColumns))

	if update.FirstName != nil {
		query = query.Set("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		query = query.Set("last_name", *update.LastName)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update user profile sql: %w", err)
	}

	return r.scanReturningUser(ctx, stmt, args, "update user profile")
}

// AddScore atomically increments the leaderboard score and returns the updated row.
func (r *UserRepository) AddScore(ctx context.Context, id string, points int) (*domain.User, error) {
	stmt, args, err := r.builder.Update("atmos.users").
		Set("leaderboard_score", squirrel.Expr("leaderboard_score + ?", points)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build add score sql: %w", err)
	}

	return r.scanReturningUser(ctx, stmt, args, "add score")
}

// Delete removes a user row; sessions follow via cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("atmos.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// TopByScore returns the highest-scoring users as leaderboard entries.
func (r *UserRepository) TopByScore(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	stmt, args, err := r.builder.
		Select("id", "first_name", "last_name", "leaderboard_score").
		From("atmos.users").
		OrderBy("leaderboard_score DESC", "created_at ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build leaderboard sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.FirstName, &entry.LastName, &entry.LeaderboardScore); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leaderboard rows: %w", err)
	}

	return entries, nil
}

func (r *UserRepository) scanReturningUser(ctx context.Context, stmt string, args []any, what string) (*domain.User, error) {
	row := r.exec.QueryRow(ctx, stmt, args...)

	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Auth0ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.LeaderboardScore,
		&user.EmailVerified,
		&user.VerificationToken,
		&user.PasswordResetToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", what, err)
	}

	return &user, nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

var _ port.UserRepository = (*UserRepository)(nil)
