// internal/domain/license/entity.go
package license

import (
	"database/sql"
	"time"
)

// LicenseKey grants access to one purchased subscription plan instance.
//
// ValidUntil is authoritative over IsExpired: the expired flag is only
// reconciled by the periodic sweep, so readers must check both.
type LicenseKey struct {
	ID             int64        `json:"id" db:"id"`
	Key            string       `json:"key" db:"key"`
	UserID         int64        `json:"user_id" db:"user_id"`
	SubscriptionID int64        `json:"subscription_id" db:"subscription_id"`
	OrderItemID    sql.NullInt64 `json:"order_item_id,omitempty" db:"order_item_id"`
	ValidUntil     time.Time    `json:"valid_until" db:"valid_until"`
	IsActive       bool         `json:"is_active" db:"is_active"`
	IsExpired      bool         `json:"is_expired" db:"is_expired"`
	RedeemedAt     sql.NullTime `json:"redeemed_at,omitempty" db:"redeemed_at"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`

	// Joined fields, populated by lookup queries
	SoftwareName string `json:"software_name,omitempty" db:"-"`
	PlanName     string `json:"plan_name,omitempty" db:"-"`
	PlanDuration int    `json:"plan_duration,omitempty" db:"-"`
}

// Valid reports whether the license is usable right now. A past
// ValidUntil invalidates the key even before the sweep flips IsExpired.
func (l *LicenseKey) Valid(now time.Time) bool {
	return l.IsActive && !l.IsExpired && l.ValidUntil.After(now)
}
