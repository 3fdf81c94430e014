package port

import (
	"context"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserProvisioned(ctx context.Context, event domain.UserProvisionedEvent) error
	PublishUserDeleted(ctx context.Context, event domain.UserDeletedEvent) error
	PublishQuizSubmitted(ctx context.Context, event domain.QuizSubmittedEvent) error
}
