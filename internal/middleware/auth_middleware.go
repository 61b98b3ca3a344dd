// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"softmarket-service/internal/pkg/jwt"
	"softmarket-service/internal/pkg/response"
	"softmarket-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.Service
	tokens      TokenVerifier
}

// TokenVerifier is the token parsing half of the jwt manager.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

func NewAuthMiddleware(authService *auth.Service, tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		tokens:      tokens,
	}
}

// Auth validates the bearer token and resolves the caller into a principal
// stored on the request context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.tokens.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		principal, err := m.authService.Principal(c.Request.Context(), claims)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "unknown user", err)
			return
		}

		c.Set("user_id", principal.UserID)
		c.Set("role", string(principal.Role))
		c.Set("principal", principal)
		c.Next()
	}
}

// RequireRole requires the caller to hold one of the given roles.
// MUST be used after Auth().
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}

		current, ok := role.(string)
		if !ok {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}

		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "insufficient role", nil)
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients cannot set headers from the browser.
	return c.Query("token")
}
