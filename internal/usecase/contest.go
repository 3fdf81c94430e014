package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/repository"
)

// ErrContestNotFound indicates the contest does not exist.
var ErrContestNotFound = errors.New("contest not found")

// ContestService manages environmental contest listings.
type ContestService struct {
	contests port.ContestRepository
}

// NewContestService constructs a contest service.
func NewContestService(contests port.ContestRepository) *ContestService {
	return &ContestService{contests: contests}
}

// ContestInput carries the fields for creating or updating a contest.
type ContestInput struct {
	Title        string
	Organization string
	Scope        string
	Grade        string
	Deadline     string
	Prize        string
	Description  string
	Requirements []string
}

func (in ContestInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(in.Organization) == "" {
		return fmt.Errorf("organization is required")
	}
	if strings.TrimSpace(in.Deadline) == "" {
		return fmt.Errorf("deadline is required")
	}
	return nil
}

func (in ContestInput) toDomain(id string, now time.Time) domain.Contest {
	requirements := in.Requirements
	if requirements == nil {
		requirements = []string{}
	}
	return domain.Contest{
		ID:           id,
		Title:        strings.TrimSpace(in.Title),
		Organization: strings.TrimSpace(in.Organization),
		Scope:        strings.TrimSpace(in.Scope),
		Grade:        strings.TrimSpace(in.Grade),
		Deadline:     strings.TrimSpace(in.Deadline),
		Prize:        strings.TrimSpace(in.Prize),
		Description:  strings.TrimSpace(in.Description),
		Requirements: requirements,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// List returns all contest listings.
func (s *ContestService) List(ctx context.Context) ([]domain.Contest, error) {
	contests, err := s.contests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	return contests, nil
}

// Get returns a single contest.
func (s *ContestService) Get(ctx context.Context, id string) (*domain.Contest, error) {
	contest, err := s.contests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("load contest: %w", err)
	}
	return contest, nil
}

// Create adds a new contest listing.
func (s *ContestService) Create(ctx context.Context, input ContestInput) (*domain.Contest, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	contest := input.toDomain(uuid.NewString(), time.Now().UTC())
	if err := s.contests.Create(ctx, contest); err != nil {
		return nil, fmt.Errorf("create contest: %w", err)
	}

	return &contest, nil
}

// Update replaces a contest's content.
func (s *ContestService) Update(ctx context.Context, id string, input ContestInput) (*domain.Contest, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	contest := input.toDomain(id, time.Now().UTC())
	updated, err := s.contests.Update(ctx, contest)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrContestNotFound
		}
		return nil, fmt.Errorf("update contest: %w", err)
	}

	return updated, nil
}

// Delete removes a contest listing.
func (s *ContestService) Delete(ctx context.Context, id string) error {
	if err := s.contests.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrContestNotFound
		}
		return fmt.Errorf("delete contest: %w", err)
	}
	return nil
}
