package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserProvisioned logs atmos.user.provisioned events.
func (p *StubPublisher) PublishUserProvisioned(_ context.Context, event domain.UserProvisionedEvent) error {
	payload := map[string]any{
		"user_id":        event.UserID,
		"auth0_id":       event.Auth0ID,
		"email":          event.Email,
		"provisioned_at": event.ProvisionedAt,
		"metadata":       event.Metadata,
	}
	p.logEvent("atmos.user.provisioned", event.UserID, event.ProvisionedAt, payload)
	return nil
}

// PublishUserDeleted logs atmos.user.deleted events.
func (p *StubPublisher) PublishUserDeleted(_ context.Context, event domain.UserDeletedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"email":      event.Email,
		"deleted_at": event.DeletedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("atmos.user.deleted", event.UserID, event.DeletedAt, payload)
	return nil
}

// PublishQuizSubmitted logs atmos.quiz.submitted events.
func (p *StubPublisher) PublishQuizSubmitted(_ context.Context, event domain.QuizSubmittedEvent) error {
	payload := map[string]any{
		"user_id":      event.UserID,
		"points":       event.Points,
		"new_score":    event.NewScore,
		"submitted_at": event.SubmittedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("atmos.quiz.submitted", event.UserID, event.SubmittedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
