// internal/repository/postgres/wishlist_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/wishlist"
)

type WishlistRepository struct {
	db *pgxpool.Pool
}

func NewWishlistRepository(db *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Exists reports whether the user already wishlisted the product.
func (r *WishlistRepository) Exists(ctx context.Context, userID, softwareID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM wishlists WHERE user_id = $1 AND software_id = $2)`

	var exists bool
	err := r.db.QueryRow(ctx, query, userID, softwareID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return exists, nil
}

// Add creates a wishlist entry.
func (r *WishlistRepository) Add(ctx context.Context, e *wishlist.Entry) error {
	query := `
		INSERT INTO wishlists (user_id, software_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, e.UserID, e.SoftwareID).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add wishlist entry: %w", translateError(err))
	}
	return nil
}

// Remove deletes a user's wishlist entries for a product.
func (r *WishlistRepository) Remove(ctx context.Context, userID, softwareID int64) error {
	query := `DELETE FROM wishlists WHERE user_id = $1 AND software_id = $2`

	if _, err := r.db.Exec(ctx, query, userID, softwareID); err != nil {
		return fmt.Errorf("failed to remove wishlist entry: %w", err)
	}
	return nil
}

// ListByUser returns a user's wishlist with product names.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID int64) ([]wishlist.Entry, error) {
	query := `
		SELECT w.id, w.user_id, w.software_id, w.created_at, sw.name
		FROM wishlists w
		JOIN software sw ON sw.id = w.software_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	entries := []wishlist.Entry{}
	for rows.Next() {
		var e wishlist.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SoftwareID, &e.CreatedAt, &e.SoftwareName); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// UserIDsBySoftware returns the distinct users who wishlisted a product,
// used to target price-drop notifications.
func (r *WishlistRepository) UserIDsBySoftware(ctx context.Context, softwareID int64) ([]int64, error) {
	query := `SELECT DISTINCT user_id FROM wishlists WHERE software_id = $1`

	rows, err := r.db.Query(ctx, query, softwareID)
	if err != nil {
		return nil, fmt.Errorf("failed to find wishlisting users: %w", err)
	}
	defer rows.Close()

	userIDs := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, nil
}
