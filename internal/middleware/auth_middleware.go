// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	xerrors "fleetmap-service/internal/pkg/errors"
	"fleetmap-service/internal/pkg/jwt"
	"fleetmap-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier *jwt.Verifier
}

// NewAuthMiddleware returns a middleware that lets every request through when
// verifier is nil.
func NewAuthMiddleware(verifier *jwt.Verifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Auth validates the bearer access token and stores the identity in the context
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.verifier == nil {
			c.Next()
			return
		}

		token := ExtractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", xerrors.ErrUnauthorized)
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set("identity_id", claims.IdentityID)

		c.Next()
	}
}

// ExtractToken reads a Bearer token from the Authorization header, falling
// back to the token query parameter (browsers cannot set headers on websockets)
func ExtractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}

// GetIdentityID returns the authenticated identity, if any
func GetIdentityID(c *gin.Context) (int64, bool) {
	identityID, exists := c.Get("identity_id")
	if !exists {
		return 0, false
	}

	id, ok := identityID.(int64)
	return id, ok
}
