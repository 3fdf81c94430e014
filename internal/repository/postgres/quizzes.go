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

// QuizRepository implements port.QuizRepository using PostgreSQL.
type QuizRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewQuizRepository constructs a PostgreSQL-backed quiz repository.
func NewQuizRepository(exec pgExecutor) *QuizRepository {
	repo := &QuizRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new quiz row.
func (r *QuizRepository) Create(ctx context.Context, quiz domain.BinQuiz) error {
	stmt, args, err := r.builder.Insert("atmos.bin_quizzes").
		Columns("id", "item", "choices", "answer", "created_at", "updated_at").
		Values(quiz.ID, quiz.Item, quiz.Choices, quiz.Answer, quiz.CreatedAt, quiz.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert quiz sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}

	return nil
}

// GetByID retrieves a quiz by identifier.
func (r *QuizRepository) GetByID(ctx context.Context, id string) (*domain.BinQuiz, error) {
	stmt, args, err := r.builder.
		Select("id", "item", "choices", "answer", "created_at", "updated_at").
		From("atmos.bin_quizzes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select quiz sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var quiz domain.BinQuiz
	if err := row.Scan(&quiz.ID, &quiz.Item, &quiz.Choices, &quiz.Answer, &quiz.CreatedAt, &quiz.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan quiz: %w", err)
	}

	return &quiz, nil
}

// List returns up to limit quizzes in random order so clients get a fresh
// question mix on every fetch. A non-positive limit returns everything.
func (r *QuizRepository) List(ctx context.Context, limit int) ([]domain.BinQuiz, error) {
	query := r.builder.
		Select("id", "item", "choices", "answer", "created_at", "updated_at").
		From("atmos.bin_quizzes").
		OrderBy("random()")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list quizzes sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.BinQuiz
	for rows.Next() {
		var quiz domain.BinQuiz
		if err := rows.Scan(&quiz.ID, &quiz.Item, &quiz.Choices, &quiz.Answer, &quiz.CreatedAt, &quiz.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz row: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quiz rows: %w", err)
	}

	return quizzes, nil
}

// Update modifies an existing quiz and returns the updated row.
func (r *QuizRepository) Update(ctx context.Context, quiz domain.BinQuiz) (*domain.BinQuiz, error) {
	stmt, args, err := r.builder.Update("atmos.bin_quizzes").
		Set("item", quiz.Item).
		Set("choices", quiz.Choices).
		Set("answer", quiz.Answer).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": quiz.ID}).
		Suffix("RETURNING id, item, choices, answer, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update quiz sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var updated domain.BinQuiz
	if err := row.Scan(&updated.ID, &updated.Item, &updated.Choices, &updated.Answer, &updated.CreatedAt, &updated.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update quiz: %w", err)
	}

	return &updated, nil
}

// Delete removes a quiz by identifier.
func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("atmos.bin_quizzes").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete quiz sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.QuizRepository = (*QuizRepository)(nil)
