// internal/domain/wishlist/entity.go
package wishlist

import "time"

// Entry is a user's saved-interest marker on a product, used to target
// price-drop notifications.
type Entry struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	SoftwareID int64     `json:"software_id" db:"software_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	SoftwareName string `json:"software_name,omitempty" db:"-"`
}

// ToggleResult reports whether the toggle added or removed the entry.
type ToggleResult struct {
	Toggled bool   `json:"toggled"`
	Entry   *Entry `json:"entry,omitempty"`
}
