// internal/domain/order/dto.go
package order

// CreateOrderRequest is the checkout payload: the chosen subscription plan
// line items. Prices are resolved server-side at purchase time.
type CreateOrderRequest struct {
	OrderItems []OrderItemInput `json:"orderItems" binding:"required"`
}

type OrderItemInput struct {
	SubscriptionID int64 `json:"subscriptionId" binding:"required"`
}

// CreatePaymentRequest records an external payment against an order.
type CreatePaymentRequest struct {
	TransactionID string  `json:"transaction_id" binding:"required,max=100"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Method        string  `json:"method" binding:"required,max=50"`
	OrderID       *int64  `json:"order_id"`
}
