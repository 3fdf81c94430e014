package auth

import (
	"errors"

	"github.com/AntoDono/utmostatmos-app/internal/client/idp"
)

// ErrNotLoggedIn reports that an access token was requested while no
// authenticated session exists. Callers must never receive an empty token
// instead of this error.
var ErrNotLoggedIn = errors.New("not logged in")

// State names the client's current authentication state.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateGuest          State = "guest"
	StateLoggingOut     State = "logging-out"
)

// Snapshot is the observable view of the state machine, broadcast to
// subscribers on every transition.
type Snapshot struct {
	State   State
	Profile idp.Profile
}

// Storage keys read together on rehydration to derive the current state.
const (
	keyAccessToken = "auth.access_token"
	keyUserProfile = "auth.user_profile"
	keyGuest       = "auth.guest"
)
