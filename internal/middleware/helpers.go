// internal/middleware/helpers.go
package middleware

import (
	"github.com/gin-gonic/gin"

	"softmarket-service/internal/domain/user"
)

// GetPrincipal gets the authenticated principal from context.
func GetPrincipal(c *gin.Context) (user.Principal, bool) {
	v, exists := c.Get("principal")
	if !exists {
		return user.Principal{}, false
	}
	p, ok := v.(user.Principal)
	return p, ok
}

// MustGetPrincipal gets the authenticated principal or panics.
func MustGetPrincipal(c *gin.Context) user.Principal {
	p, exists := GetPrincipal(c)
	if !exists {
		panic("principal not found in context")
	}
	return p
}

// GetUserID gets the authenticated user id from context.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetUserID gets the authenticated user id or panics.
func MustGetUserID(c *gin.Context) int64 {
	id, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return id
}

// IsAuthenticated checks if request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}
