package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/repository"
)

var contestColumns = []string{
	"id",
	"title",
	"organization",
	"scope",
	"grade",
	"deadline",
	"prize",
	"description",
	"requirements",
	"created_at",
	"updated_at",
}

// ContestRepository implements port.ContestRepository using PostgreSQL.
type ContestRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewContestRepository constructs a PostgreSQL-backed contest repository.
func NewContestRepository(exec pgExecutor) *ContestRepository {
	repo := &ContestRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new contest row.
func (r *ContestRepository) Create(ctx context.Context, contest domain.Contest) error {
	stmt, args, err := r.builder.Insert("atmos.contests").
		Columns(contestColumns...).
		Values(
			contest.ID,
			contest.Title,
			contest.Organization,
			contest.Scope,
			contest.Grade,
			contest.Deadline,
			contest.Prize,
			contest.Description,
			contest.Requirements,
			contest.CreatedAt,
			contest.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert contest sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert contest: %w", err)
	}

	return nil
}

// GetByID retrieves a contest by identifier.
func (r *ContestRepository) GetByID(ctx context.Context, id string) (*domain.Contest, error) {
	stmt, args, err := r.builder.
		Select(contestColumns...).
		From("atmos.contests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select contest sql: %w", err)
	}

	contest, err := scanContest(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan contest: %w", err)
	}

	return contest, nil
}

// List returns all contest listings, newest first.
func (r *ContestRepository) List(ctx context.Context) ([]domain.Contest, error) {
	stmt, args, err := r.builder.
		Select(contestColumns...).
		From("atmos.contests").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list contests sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query contests: %w", err)
	}
	defer rows.Close()

	var contests []domain.Contest
	for rows.Next() {
		contest, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contest row: %w", err)
		}
		contests = append(contests, *contest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contest rows: %w", err)
	}

	return contests, nil
}

// Update modifies an existing contest and returns the updated row.
func (r *ContestRepository) Update(ctx context.Context, contest domain.Contest) (*domain.Contest, error) {
	stmt, args, err := r.builder.Update("atmos.contests").
		Set("title", contest.Title).
		Set("organization", contest.Organization).
		Set("scope", contest.Scope).
		Set("grade", contest.Grade).
		Set("deadline", contest.Deadline).
		Set("prize", contest.Prize).
		Set("description", contest.Description).
		Set("requirements", contest.Requirements).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": contest.ID}).
		Suffix("RETURNING " + joinColumns(contestColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update contest sql: %w", err)
	}

	updated, err := scanContest(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update contest: %w", err)
	}

	return updated, nil
}

// Delete removes a contest by identifier.
func (r *ContestRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("atmos.contests").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete contest sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete contest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func scanContest(row pgx.Row) (*domain.Contest, error) {
	var contest domain.Contest
	if err := row.Scan(
		&contest.ID,
		&contest.Title,
		&contest.Organization,
		&contest.Scope,
		&contest.Grade,
		&contest.Deadline,
		&contest.Prize,
		&contest.Description,
		&contest.Requirements,
		&contest.CreatedAt,
		&contest.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contest, nil
}

var _ port.ContestRepository = (*ContestRepository)(nil)
