// internal/domain/order/entity.go
package order

import (
	"database/sql"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusRefunded  OrderStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Order is a purchase of one or more subscription plan line items.
// TotalAmount is a snapshot of the item prices at creation time and is
// never recomputed.
type Order struct {
	ID          int64       `json:"id" db:"id"`
	Reference   string      `json:"reference" db:"reference"`
	UserID      int64       `json:"user_id" db:"user_id"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Status      OrderStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`

	Items []OrderItem `json:"items,omitempty" db:"-"`
}

// OrderItem freezes the price of one subscription plan at purchase time.
// Later discount changes must not alter it.
type OrderItem struct {
	ID             int64   `json:"id" db:"id"`
	OrderID        int64   `json:"order_id" db:"order_id"`
	SubscriptionID int64   `json:"subscription_id" db:"subscription_id"`
	Price          float64 `json:"price" db:"price"`
}

// Payment is a bookkeeping stub for an external payment gateway.
// TransactionID is unique; a duplicate is a conflict, not a retry.
type Payment struct {
	ID            int64         `json:"id" db:"id"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	Amount        float64       `json:"amount" db:"amount"`
	Method        string        `json:"method" db:"method"`
	Status        PaymentStatus `json:"status" db:"status"`
	UserID        int64         `json:"user_id" db:"user_id"`
	OrderID       sql.NullInt64 `json:"order_id,omitempty" db:"order_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}
