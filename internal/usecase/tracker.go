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

var (
	// ErrTrackerNotFound indicates the tracker does not exist.
	ErrTrackerNotFound = errors.New("tracker not found")
	// ErrInvalidCoordinates rejects positions outside the globe.
	ErrInvalidCoordinates = errors.New("coordinates out of range")
)

// TrackerService manages mapped recycling-bin locations.
type TrackerService struct {
	trackers port.TrackerRepository
}

// NewTrackerService constructs a tracker service.
func NewTrackerService(trackers port.TrackerRepository) *TrackerService {
	return &TrackerService{trackers: trackers}
}

// TrackerInput carries the fields for creating or updating a tracker.
type TrackerInput struct {
	Type      string
	Name      string
	Longitude float64
	Latitude  float64
}

func (in TrackerInput) toDomain(id string, now time.Time) domain.Tracker {
	return domain.Tracker{
		ID:        id,
		Type:      strings.TrimSpace(in.Type),
		Name:      strings.TrimSpace(in.Name),
		Longitude: in.Longitude,
		Latitude:  in.Latitude,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (in TrackerInput) validate() error {
	if strings.TrimSpace(in.Type) == "" {
		return fmt.Errorf("type is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("name is required")
	}
	probe := domain.Tracker{Longitude: in.Longitude, Latitude: in.Latitude}
	if !probe.ValidCoordinates() {
		return ErrInvalidCoordinates
	}
	return nil
}

// List returns trackers, optionally filtered by bin type.
func (s *TrackerService) List(ctx context.Context, binType string) ([]domain.Tracker, error) {
	var (
		trackers []domain.Tracker
		err      error
	)
	if binType = strings.TrimSpace(binType); binType != "" {
		trackers, err = s.trackers.ListByType(ctx, binType)
	} else {
		trackers, err = s.trackers.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list trackers: %w", err)
	}
	return trackers, nil
}

// Get returns a single tracker.
func (s *TrackerService) Get(ctx context.Context, id string) (*domain.Tracker, error) {
	tracker, err := s.trackers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrackerNotFound
		}
		return nil, fmt.Errorf("load tracker: %w", err)
	}
	return tracker, nil
}

// Create adds a new tracker pin.
func (s *TrackerService) Create(ctx context.Context, input TrackerInput) (*domain.Tracker, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tracker := input.toDomain(uuid.NewString(), time.Now().UTC())
	if err := s.trackers.Create(ctx, tracker); err != nil {
		return nil, fmt.Errorf("create tracker: %w", err)
	}

	return &tracker, nil
}

// Update replaces a tracker's content.
func (s *TrackerService) Update(ctx context.Context, id string, input TrackerInput) (*domain.Tracker, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	tracker := input.toDomain(id, time.Now().UTC())
	updated, err := s.trackers.Update(ctx, tracker)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTrackerNotFound
		}
		return nil, fmt.Errorf("update tracker: %w", err)
	}

	return updated, nil
}

// Delete removes a tracker pin.
func (s *TrackerService) Delete(ctx context.Context, id string) error {
	if err := s.trackers.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTrackerNotFound
		}
		return fmt.Errorf("delete tracker: %w", err)
	}
	return nil
}
