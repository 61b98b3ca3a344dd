// internal/handlers/wishlist/wishlist_handler.go
package wishlist

import (
	"net/http"
	"strconv"

	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	wishlistsvc "softmarket-service/internal/service/wishlist"

	"github.com/gin-gonic/gin"
)

type WishlistHandler struct {
	wishlistService *wishlistsvc.Service
}

func NewWishlistHandler(wishlistService *wishlistsvc.Service) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// Toggle adds the product when absent, removes it when present
func (h *WishlistHandler) Toggle(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	softwareID, err := strconv.ParseInt(c.Param("softwareId"), 10, 64)
	if err != nil || softwareID <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid product ID", err)
		return
	}

	result, err := h.wishlistService.Toggle(c.Request.Context(), userID, softwareID)
	if err != nil {
		response.FromError(c, err, "failed to toggle wishlist entry")
		return
	}

	message := "removed from wishlist"
	if result.Toggled {
		message = "added to wishlist"
	}
	response.Success(c, http.StatusOK, message, result)
}

func (h *WishlistHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.wishlistService.List(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, "failed to list wishlist")
		return
	}

	response.Success(c, http.StatusOK, "wishlist retrieved", result)
}
