package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AntoDono/utmostatmos-app/internal/core/domain"
	"github.com/AntoDono/utmostatmos-app/internal/core/port"
	"github.com/AntoDono/utmostatmos-app/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// bearerToken extracts the credential from the Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// RequireSession resolves a legacy opaque session token to its user. Unknown
// and expired tokens produce the same response.
func RequireSession(sessions *usecase.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		user, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, usecase.ErrSessionNotFound.Error()))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		setCurrentUser(c, user)
		c.Set(SessionTokenKey, token)
		c.Next()
	}
}

// RequireBearer verifies a delegated access token and reconciles the verified
// subject with a local user, provisioning one on first sight.
func RequireBearer(verifier port.TokenVerifier, identity *usecase.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid access token"))
			return
		}

		user, err := identity.Reconcile(c.Request.Context(), *claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		setCurrentUser(c, user)
		c.Next()
	}
}

// RequireIdentity accepts either credential kind: an opaque session token is
// tried first, then the token is verified as a delegated bearer token. The
// session probe is a single indexed read, so legacy clients pay nothing extra.
func RequireIdentity(sessions *usecase.SessionService, verifier port.TokenVerifier, identity *usecase.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		user, err := sessions.Validate(c.Request.Context(), token)
		if err == nil {
			setCurrentUser(c, user)
			c.Set(SessionTokenKey, token)
			c.Next()
			return
		}
		if !errors.Is(err, usecase.ErrSessionNotFound) {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		claims, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, usecase.ErrSessionNotFound.Error()))
			return
		}

		user, err = identity.Reconcile(c.Request.Context(), *claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		setCurrentUser(c, user)
		c.Next()
	}
}

// RequireRole checks that the authenticated user carries one of the roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			newErrorResponse(c, "insufficient permissions"))
	}
}

func setCurrentUser(c *gin.Context, user *domain.User) {
	c.Set(UserIDKey, user.ID)
	c.Set(CurrentUserKey, user)

	if reqCtx := GetRequestContext(c); reqCtx != nil {
		reqCtx.UserID = user.ID
	}
}

// CurrentUser retrieves the authenticated user placed by the auth middleware.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	val, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

// SessionToken retrieves the opaque token the request authenticated with.
func SessionToken(c *gin.Context) (string, bool) {
	val, exists := c.Get(SessionTokenKey)
	if !exists {
		return "", false
	}
	token, ok := val.(string)
	return token, ok
}

// GetAuthenticatedUserID retrieves the user ID from context (helper for handlers)
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok {
		return id, true
	}

	return "", false
}
