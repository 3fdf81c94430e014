package domain

import (
	"strings"
	"time"
)

// Role enumerates the access levels a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User mirrors the persisted representation in the users table.
//
// Auth0ID is the external identity-provider subject identifier; it is nil
// only for accounts created through the legacy signup flow before migration.
// PasswordHash and the token fields exist for the legacy design and must
// never appear in an externally visible representation.
type User struct {
	ID                 string
	Auth0ID            *string
	Email              string
	PasswordHash       *string
	FirstName          string
	LastName           *string
	Role               Role
	LeaderboardScore   int
	EmailVerified      bool
	VerificationToken  *string
	PasswordResetToken *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AddScore increases the leaderboard score. Negative deltas are rejected by
// the caller before reaching here; the guard keeps the invariant local too.
func (u *User) AddScore(points int) {
	if points < 0 {
		return
	}
	u.LeaderboardScore += points
}

// Claims is the verified claim set extracted from a bearer token.
// Subject is the only required member; the rest are best-effort profile data.
type Claims struct {
	Subject    string
	Email      string
	Name       string
	GivenName  string
	FamilyName string
}

// ProfileNames resolves first/last name from the claim set. Explicit given
// and family claims win; otherwise the combined name claim is split on the
// first space, with the remainder treated as the last name.
func (c Claims) ProfileNames() (first string, last *string) {
	if c.GivenName != "" {
		first = c.GivenName
		if c.FamilyName != "" {
			family := c.FamilyName
			last = &family
		}
		return first, last
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "", nil
	}

	idx := strings.Index(name, " ")
	if idx < 0 {
		return name, nil
	}

	rest := strings.TrimSpace(name[idx+1:])
	if rest == "" {
		return name[:idx], nil
	}
	return name[:idx], &rest
}
