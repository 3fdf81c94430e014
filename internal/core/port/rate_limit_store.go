package port

import (
	"context"
	"time"
)

// RateLimitStore persists credential-endpoint attempt timestamps for
// sliding-window throttling. Identifiers already carry the rule scope
// (e.g. "auth_login_ip:<ip>").
type RateLimitStore interface {
	// TrimWindow drops attempts older than the window.
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	// CountAttempts reports how many attempts remain inside the window.
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	// RecordAttempt appends one attempt at the given instant.
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	// OldestAttempt returns the earliest attempt still inside the window,
	// or false when the window is empty.
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}
