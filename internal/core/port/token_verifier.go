package port

import (
	"context"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
)

// TokenVerifier validates an inbound bearer token against the trusted
// identity provider and returns its verified claim set. Implementations must
// fail closed: any signature, issuer, audience, algorithm, or expiry problem
// is an error, never a partial claim set.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.Claims, error)
}
