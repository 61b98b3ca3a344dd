// internal/handlers/payment/payment_handler.go
package payment

import (
	"net/http"

	"softmarket-service/internal/domain/order"
	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/response"
	ordersvc "softmarket-service/internal/service/order"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	orderService *ordersvc.Service
}

func NewPaymentHandler(orderService *ordersvc.Service) *PaymentHandler {
	return &PaymentHandler{orderService: orderService}
}

// CreatePayment records an external gateway payment and completes the
// linked order. A repeated transaction id yields 409.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req order.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.orderService.ConfirmPayment(c.Request.Context(), principal, &req)
	if err != nil {
		response.FromError(c, err, "failed to record payment")
		return
	}

	response.Success(c, http.StatusCreated, "payment recorded successfully", result)
}
