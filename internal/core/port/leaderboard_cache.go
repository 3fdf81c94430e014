package port

import (
	"context"
	"time"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

// LeaderboardCache holds a short-lived snapshot of the top scorers.
// A cache miss returns (nil, nil); errors are reserved for backend failures.
type LeaderboardCache interface {
	Get(ctx context.Context) ([]domain.LeaderboardEntry, error)
	Set(ctx context.Context, entries []domain.LeaderboardEntry, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}
