// internal/domain/catalog/entity.go
package catalog

import (
	"database/sql"
	"time"
)

// SoftwareStatus is the moderation status of a product listing.
type SoftwareStatus int

const (
	SoftwarePending  SoftwareStatus = 0
	SoftwareActive   SoftwareStatus = 1
	SoftwareInactive SoftwareStatus = 2
)

// SubscriptionStatus is the status of a pricing edge between a product and
// a subscription plan.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
)

// Software is a sellable product. Discount is applied uniformly to all of
// its subscription plan prices.
type Software struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   sql.NullString  `json:"description,omitempty" db:"description"`
	Features      sql.NullString  `json:"features,omitempty" db:"features"`
	Requirements  sql.NullString  `json:"requirements,omitempty" db:"requirements"`
	FilePath      sql.NullString  `json:"file_path,omitempty" db:"file_path"`
	Discount      float64         `json:"discount" db:"discount"`
	Status        SoftwareStatus  `json:"status" db:"status"`
	AverageRating sql.NullFloat64 `json:"average_rating,omitempty" db:"average_rating"`
	CategoryID    sql.NullInt64   `json:"category_id,omitempty" db:"category_id"`
	SellerID      int64           `json:"seller_id" db:"seller_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// SubscriptionPlan is a duration template shared across products,
// e.g. "1 month" or "6 months".
type SubscriptionPlan struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Duration  int       `json:"duration" db:"duration"` // months
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SoftwareSubscription is the pricing edge between a Software and a
// SubscriptionPlan. Price is always derived from BasePrice and the parent
// product's current discount.
type SoftwareSubscription struct {
	ID                 int64              `json:"id" db:"id"`
	SoftwareID         int64              `json:"software_id" db:"software_id"`
	SubscriptionPlanID int64              `json:"subscription_plan_id" db:"subscription_plan_id"`
	BasePrice          float64            `json:"base_price" db:"base_price"`
	Price              float64            `json:"price" db:"price"`
	Status             SubscriptionStatus `json:"status" db:"status"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`

	// Joined fields, populated by list queries
	PlanName     string `json:"plan_name,omitempty" db:"-"`
	PlanDuration int    `json:"plan_duration,omitempty" db:"-"`
}

// PriceHistory is an immutable record of a decrease in a product's lowest
// active price.
type PriceHistory struct {
	ID         int64     `json:"id" db:"id"`
	SoftwareID int64     `json:"software_id" db:"software_id"`
	OldPrice   float64   `json:"old_price" db:"old_price"`
	NewPrice   float64   `json:"new_price" db:"new_price"`
	ChangedAt  time.Time `json:"changed_at" db:"changed_at"`
}
