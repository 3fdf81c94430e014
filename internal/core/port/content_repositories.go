package port

import (
	"context"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

// QuizRepository exposes persistence behavior for bin quizzes.
type QuizRepository interface {
	Create(ctx context.Context, quiz domain.BinQuiz) error
	GetByID(ctx context.Context, id string) (*domain.BinQuiz, error)
	List(ctx context.Context, limit int) ([]domain.BinQuiz, error)
	Update(ctx context.Context, quiz domain.BinQuiz) (*domain.BinQuiz, error)
	Delete(ctx context.Context, id string) error
}

// ContestRepository exposes persistence behavior for contest listings.
type ContestRepository interface {
	Create(ctx context.Context, contest domain.Contest) error
	GetByID(ctx context.Context, id string) (*domain.Contest, error)
	List(ctx context.Context) ([]domain.Contest, error)
	Update(ctx context.Context, contest domain.Contest) (*domain.Contest, error)
	Delete(ctx context.Context, id string) error
}

// TrackerRepository exposes persistence behavior for recycling-bin trackers.
type TrackerRepository interface {
	Create(ctx context.Context, tracker domain.Tracker) error
	GetByID(ctx context.Context, id string) (*domain.Tracker, error)
	List(ctx context.Context) ([]domain.Tracker, error)
	ListByType(ctx context.Context, binType string) ([]domain.Tracker, error)
	Update(ctx context.Context, tracker domain.Tracker) (*domain.Tracker, error)
	Delete(ctx context.Context, id string) error
}
