package idp

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAuthorizeCancelled reports that the user abandoned the provider's
	// consent flow. Callers treat it as a clean return to the prior state.
	ErrAuthorizeCancelled = errors.New("authorization cancelled")
	// ErrTransactionActive reports that another authorization transaction is
	// already in flight.
	ErrTransactionActive = errors.New("authorization already in progress")
	// ErrNoCredentials reports that no credentials are held locally.
	ErrNoCredentials = errors.New("no credentials available")
)

// Profile carries the claims decoded from the provider's ID token. The decode
// is unverified and for display only; trust decisions happen server-side.
type Profile struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// Credentials is the provider-issued credential set.
type Credentials struct {
	AccessToken string
	Expiry      time.Time
	Profile     Profile
}

// Connector abstracts the delegated identity provider.
type Connector interface {
	// Authorize runs the interactive consent flow and returns fresh
	// credentials.
	Authorize(ctx context.Context) (Credentials, error)
	// Credentials returns the current credential set, refreshing silently
	// when the provider supports it.
	Credentials(ctx context.Context) (Credentials, error)
	// ClearCredentials drops any held credentials.
	ClearCredentials(ctx context.Context) error
}
