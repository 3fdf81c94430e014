package domain

import "time"

// Session represents one authenticated client instance in the legacy opaque
// session design. The token carries no structure; trust comes entirely from
// the store lookup.
type Session struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the supplied moment.
// Readers treat an expired session exactly like a missing one.
func (s Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(at)
}
