// internal/domain/notification/entity.go
package notification

import (
	"database/sql"
	"time"
)

type Type string

const (
	TypePriceDrop      Type = "PRICE_DROP"
	TypeOrderCompleted Type = "ORDER_COMPLETED"
)

// Notification is created solely by the dispatch queue consumer, never by
// the request path.
type Notification struct {
	ID         int64         `json:"id" db:"id"`
	UserID     int64         `json:"user_id" db:"user_id"`
	SoftwareID sql.NullInt64 `json:"software_id,omitempty" db:"software_id"`
	Message    string        `json:"message" db:"message"`
	Type       Type          `json:"type" db:"type"`
	IsRead     bool          `json:"is_read" db:"is_read"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
}

// PriceDropPayload is the queue job payload for a lowest-price decrease.
type PriceDropPayload struct {
	ProductID            int64   `json:"productId"`
	ProductName          string  `json:"productName"`
	OldPrice             float64 `json:"oldPrice"`
	NewPrice             float64 `json:"newPrice"`
	SubscriptionPlanName string  `json:"subscriptionPlanName"`
}

// OrderCompletedPayload is the queue job payload for a confirmed payment.
type OrderCompletedPayload struct {
	UserID      int64   `json:"userId"`
	OrderID     int64   `json:"orderId"`
	TotalAmount float64 `json:"totalAmount"`
}

// Event is pushed over the websocket bridge when a notification row is
// created, so connected clients see it without polling.
type Event struct {
	UserID       int64  `json:"user_id"`
	Notification *Notification `json:"notification"`
}
