// internal/domain/user/entity.go
package user

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID           int64          `json:"id" db:"id"`
	Email        string         `json:"email" db:"email"`
	Username     string         `json:"username" db:"username"`
	PasswordHash string         `json:"-" db:"password_hash"`
	Role         Role           `json:"role" db:"role"`
	SellerID     sql.NullInt64  `json:"seller_id,omitempty" db:"seller_id"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// SellerProfile is the public seller identity attached to listings.
type SellerProfile struct {
	ID          int64          `json:"id" db:"id"`
	UserID      int64          `json:"user_id" db:"user_id"`
	Verified    bool           `json:"verified" db:"verified"`
	WebsiteLink sql.NullString `json:"website_link,omitempty" db:"website_link"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
}
