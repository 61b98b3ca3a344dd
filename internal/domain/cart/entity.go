// internal/domain/cart/entity.go
package cart

import "time"

// Item is one row per (user, subscription); the same user cannot hold two
// cart rows for the same subscription plan.
type Item struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	SubscriptionID int64     `json:"subscription_id" db:"subscription_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	Price        float64 `json:"price,omitempty" db:"-"`
	PlanName     string  `json:"plan_name,omitempty" db:"-"`
	SoftwareName string  `json:"software_name,omitempty" db:"-"`
}

type AddItemRequest struct {
	SubscriptionID int64 `json:"subscriptionId" binding:"required"`
}
