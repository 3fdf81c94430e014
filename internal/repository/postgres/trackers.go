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

// TrackerRepository implements port.TrackerRepository using PostgreSQL.
type TrackerRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTrackerRepository constructs a PostgreSQL-backed tracker repository.
func NewTrackerRepository(exec pgExecutor) *TrackerRepository {
	repo := &TrackerRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a new tracker row.
func (r *TrackerRepository) Create(ctx context.Context, tracker domain.Tracker) error {
	stmt, args, err := r.builder.Insert("atmos.trackers").
		Columns("id", "type", "name", "longitude", "latitude", "created_at", "updated_at").
		Values(
			tracker.ID,
			tracker.Type,
			tracker.Name,
			tracker.Longitude,
			tracker.Latitude,
			tracker.CreatedAt,
			tracker.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert tracker sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert tracker: %w", err)
	}

	return nil
}

// GetByID retrieves a tracker by identifier.
func (r *TrackerRepository) GetByID(ctx context.Context, id string) (*domain.Tracker, error) {
	stmt, args, err := r.builder.
		Select("id", "type", "name", "longitude", "latitude", "created_at", "updated_at").
		From("atmos.trackers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select tracker sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var tracker domain.Tracker
	if err := row.Scan(
		&tracker.ID,
		&tracker.Type,
		&tracker.Name,
		&tracker.Longitude,
		&tracker.Latitude,
		&tracker.CreatedAt,
		&tracker.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan tracker: %w", err)
	}

	return &tracker, nil
}

// List returns all trackers.
func (r *TrackerRepository) List(ctx context.Context) ([]domain.Tracker, error) {
	return r.list(ctx, nil)
}

// ListByType returns trackers filtered by bin type.
func (r *TrackerRepository) ListByType(ctx context.Context, binType string) ([]domain.Tracker, error) {
	return r.list(ctx, squirrel.Eq{"type": binType})
}

func (r *TrackerRepository) list(ctx context.Context, pred any) ([]domain.Tracker, error) {
	query := r.builder.
		Select("id", "type", "name", "longitude", "latitude", "created_at", "updated_at").
		From("atmos.trackers").
		OrderBy("created_at ASC")

	if pred != nil {
		query = query.Where(pred)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list trackers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query trackers: %w", err)
	}
	defer rows.Close()

	var trackers []domain.Tracker
	for rows.Next() {
		var tracker domain.Tracker
		if err := rows.Scan(
			&tracker.ID,
			&tracker.Type,
			&tracker.Name,
			&tracker.Longitude,
			&tracker.Latitude,
			&tracker.CreatedAt,
			&tracker.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan tracker row: %w", err)
		}
		trackers = append(trackers, tracker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracker rows: %w", err)
	}

	return trackers, nil
}

// Update modifies an existing tracker and returns the updated row.
func (r *TrackerRepository) Update(ctx context.Context, tracker domain.Tracker) (*domain.Tracker, error) {
	stmt, args, err := r.builder.Update("atmos.trackers").
		Set("type", tracker.Type).
		Set("name", tracker.Name).
		Set("longitude", tracker.Longitude).
		Set("latitude", tracker.Latitude).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": tracker.ID}).
		Suffix("RETURNING id, type, name, longitude, latitude, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update tracker sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var updated domain.Tracker
	if err := row.Scan(
		&updated.ID,
		&updated.Type,
		&updated.Name,
		&updated.Longitude,
		&updated.Latitude,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update tracker: %w", err)
	}

	return &updated, nil
}

// Delete removes a tracker by identifier.
func (r *TrackerRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("atmos.trackers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete tracker sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete tracker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.TrackerRepository = (*TrackerRepository)(nil)
