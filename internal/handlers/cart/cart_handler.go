// internal/handlers/cart/cart_handler.go
package cart

import (
	"net/http"
	"strconv"

	"softmarket-service/internal/domain/cart"
	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	cartsvc "softmarket-service/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	cartService *cartsvc.Service
}

func NewCartHandler(cartService *cartsvc.Service) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) AddItem(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.cartService.AddItem(c.Request.Context(), userID, &req)
	if err != nil {
		response.FromError(c, err, "failed to add item to cart")
		return
	}

	response.Success(c, http.StatusCreated, "item added to cart", result)
}

func (h *CartHandler) ListItems(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.cartService.List(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err, "failed to list cart items")
		return
	}

	response.Success(c, http.StatusOK, "cart retrieved", result)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	subscriptionID, err := strconv.ParseInt(c.Param("subscriptionId"), 10, 64)
	if err != nil || subscriptionID <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid subscription ID", err)
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), userID, subscriptionID); err != nil {
		response.FromError(c, err, "failed to remove item from cart")
		return
	}

	response.Success(c, http.StatusOK, "item removed from cart", nil)
}

func (h *CartHandler) Clear(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		response.FromError(c, err, "failed to clear cart")
		return
	}

	response.Success(c, http.StatusOK, "cart cleared", nil)
}
