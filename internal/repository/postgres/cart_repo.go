// internal/repository/postgres/cart_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/cart"
	xerrors "softmarket-service/internal/pkg/errors"
)

type CartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) *CartRepository {
	return &CartRepository{db: db}
}

// Add inserts a cart row. The (user_id, subscription_id) unique index
// rejects duplicates.
func (r *CartRepository) Add(ctx context.Context, item *cart.Item) error {
	query := `
		INSERT INTO cart_items (user_id, subscription_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, item.UserID, item.SubscriptionID).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", translateError(err))
	}
	return nil
}

// ListByUser returns a user's cart. Entries whose subscription is no
// longer active are treated as absent.
func (r *CartRepository) ListByUser(ctx context.Context, userID int64) ([]cart.Item, error) {
	query := `
		SELECT c.id, c.user_id, c.subscription_id, c.created_at,
		       ss.price, sp.name, sw.name
		FROM cart_items c
		JOIN software_subscriptions ss ON ss.id = c.subscription_id
		JOIN subscription_plans sp ON sp.id = ss.subscription_plan_id
		JOIN software sw ON sw.id = ss.software_id
		WHERE c.user_id = $1 AND ss.status = 'ACTIVE'
		ORDER BY c.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []cart.Item{}
	for rows.Next() {
		var item cart.Item
		err := rows.Scan(
			&item.ID, &item.UserID, &item.SubscriptionID, &item.CreatedAt,
			&item.Price, &item.PlanName, &item.SoftwareName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Remove deletes one (user, subscription) cart row.
func (r *CartRepository) Remove(ctx context.Context, userID, subscriptionID int64) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND subscription_id = $2`

	result, err := r.db.Exec(ctx, query, userID, subscriptionID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// RemoveBySubscriptions deletes the given subscription rows from a user's
// cart. Missing rows are not an error; checkout clears what it bought and
// leaves the rest.
func (r *CartRepository) RemoveBySubscriptions(ctx context.Context, userID int64, subscriptionIDs []int64) error {
	if len(subscriptionIDs) == 0 {
		return nil
	}
	query := `DELETE FROM cart_items WHERE user_id = $1 AND subscription_id = ANY($2)`

	if _, err := r.db.Exec(ctx, query, userID, subscriptionIDs); err != nil {
		return fmt.Errorf("failed to remove purchased cart items: %w", err)
	}
	return nil
}

// Clear empties a user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	query := `DELETE FROM cart_items WHERE user_id = $1`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
