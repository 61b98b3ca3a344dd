// internal/handlers/order/order_handler.go
package order

import (
	"net/http"
	"strconv"

	"softmarket-service/internal/domain/order"
	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	ordersvc "softmarket-service/internal/service/order"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService *ordersvc.Service
}

func NewOrderHandler(orderService *ordersvc.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid order ID", err)
		return 0, false
	}
	return id, true
}

// CreateOrder runs checkout for the authenticated user
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), principal, &req)
	if err != nil {
		response.FromError(c, err, "failed to create order")
		return
	}

	response.Success(c, http.StatusCreated, "order created successfully", result)
}

// GetOrder retrieves one order with its line items
func (h *OrderHandler) GetOrder(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.orderService.GetOrder(c.Request.Context(), principal, id)
	if err != nil {
		response.FromError(c, err, "order not found")
		return
	}

	response.Success(c, http.StatusOK, "order retrieved", result)
}

// ListOrders retrieves the caller's orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	result, err := h.orderService.ListOrders(c.Request.Context(), principal)
	if err != nil {
		response.FromError(c, err, "failed to list orders")
		return
	}

	response.Success(c, http.StatusOK, "orders retrieved", result)
}

// CancelOrder cancels an order and refunds it when already paid
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.orderService.CancelOrderWithRefund(c.Request.Context(), principal, id); err != nil {
		response.FromError(c, err, "failed to cancel order")
		return
	}

	response.Success(c, http.StatusOK, "order cancelled", nil)
}
