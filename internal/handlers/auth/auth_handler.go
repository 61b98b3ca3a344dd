// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"softmarket-service/internal/domain/user"
	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	authsvc "softmarket-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *authsvc.Service
}

func NewAuthHandler(authService *authsvc.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a user or seller account
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to register")
		return
	}

	response.Success(c, http.StatusCreated, "registered successfully", result)
}

// GetMe returns the authenticated user's profile
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, "user not found")
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", result)
}

// Login verifies credentials and issues an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err, "failed to login")
		return
	}

	response.Success(c, http.StatusOK, "logged in successfully", result)
}
