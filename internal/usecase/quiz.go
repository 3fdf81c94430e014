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
	"github.com/AntoDono/utmostatmos-app/internal/repository"
)

const (
	defaultQuizListLimit = 10
	maxQuizListLimit     = 100
)

var (
	// ErrNegativePoints rejects score submissions that would decrement a score.
	ErrNegativePoints = errors.New("points must not be negative")
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
)

// QuizService serves bin-quiz content and scores submissions.
type QuizService struct {
	quizzes     port.QuizRepository
	users       port.UserRepository
	leaderboard *LeaderboardService
	events      port.EventPublisher
	logger      *zap.Logger
}

// NewQuizService constructs a quiz service.
func NewQuizService(quizzes port.QuizRepository, users port.UserRepository, leaderboard *LeaderboardService, events port.EventPublisher, logger *zap.Logger) *QuizService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{quizzes: quizzes, users: users, leaderboard: leaderboard, events: events, logger: logger}
}

// List returns a batch of quizzes for the client to present.
func (s *QuizService) List(ctx context.Context, limit int) ([]domain.BinQuiz, error) {
	if limit <= 0 {
		limit = defaultQuizListLimit
	}
	if limit > maxQuizListLimit {
		limit = maxQuizListLimit
	}
	quizzes, err := s.quizzes.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}

// Submit credits the points to the user's score. Negative points are rejected
// before any state changes; zero is a valid no-gain submission.
func (s *QuizService) Submit(ctx context.Context, userID string, points int) (*domain.User, error) {
	if points < 0 {
		return nil, ErrNegativePoints
	}

	user, err := s.users.AddScore(ctx, userID, points)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("add score: %w", err)
	}

	if s.leaderboard != nil {
		s.leaderboard.Invalidate(ctx)
	}

	if s.events != nil {
		event := domain.QuizSubmittedEvent{
			UserID:      user.ID,
			Points:      points,
			NewScore:    user.LeaderboardScore,
			SubmittedAt: time.Now().UTC(),
		}
		if err := s.events.PublishQuizSubmitted(ctx, event); err != nil {
			s.logger.Warn("failed to publish quiz submitted event",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return user, nil
}

// QuizInput carries the fields for creating or updating a quiz.
type QuizInput struct {
	Item    string
	Choices []string
	Answer  string
}

func (in QuizInput) validate() error {
	if strings.TrimSpace(in.Item) == "" {
		return fmt.Errorf("item is required")
	}
	if len(in.Choices) < 2 {
		return fmt.Errorf("at least two choices are required")
	}
	answer := strings.TrimSpace(in.Answer)
	if answer == "" {
		return fmt.Errorf("answer is required")
	}
	for _, choice := range in.Choices {
		if choice == answer {
			return nil
		}
	}
	return fmt.Errorf("answer must be one of the choices")
}

// Create adds a new quiz.
func (s *QuizService) Create(ctx context.Context, input QuizInput) (*domain.BinQuiz, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	quiz := domain.BinQuiz{
		ID:        uuid.NewString(),
		Item:      strings.TrimSpace(input.Item),
		Choices:   input.Choices,
		Answer:    strings.TrimSpace(input.Answer),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	return &quiz, nil
}

// Update replaces the quiz's content.
func (s *QuizService) Update(ctx context.Context, id string, input QuizInput) (*domain.BinQuiz, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	quiz := domain.BinQuiz{
		ID:      id,
		Item:    strings.TrimSpace(input.Item),
		Choices: input.Choices,
		Answer:  strings.TrimSpace(input.Answer),
	}

	updated, err := s.quizzes.Update(ctx, quiz)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("update quiz: %w", err)
	}

	return updated, nil
}

// Delete removes a quiz.
func (s *QuizService) Delete(ctx context.Context, id string) error {
	if err := s.quizzes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}
