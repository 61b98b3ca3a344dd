// internal/repository/postgres/order_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/order"
	xerrors "softmarket-service/internal/pkg/errors"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithTx creates the order header inside tx.
func (r *OrderRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	query := `
		INSERT INTO orders (reference, user_id, total_amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query, o.Reference, o.UserID, o.TotalAmount, o.Status).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", translateError(err))
	}
	return nil
}

// CreateItemsWithTx bulk-creates order items inside tx and fills in their
// generated ids.
func (r *OrderRepository) CreateItemsWithTx(ctx context.Context, tx pgx.Tx, items []order.OrderItem) ([]order.OrderItem, error) {
	query := `
		INSERT INTO order_items (order_id, subscription_id, price)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	created := make([]order.OrderItem, 0, len(items))
	for _, item := range items {
		if err := tx.QueryRow(ctx, query, item.OrderID, item.SubscriptionID, item.Price).Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		created = append(created, item)
	}
	return created, nil
}

// FindByID retrieves an order with its items.
func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	query := `
		SELECT id, reference, user_id, total_amount, status, created_at
		FROM orders
		WHERE id = $1
	`

	var o order.Order
	err := r.db.QueryRow(ctx, query, id).Scan(&o.ID, &o.Reference, &o.UserID, &o.TotalAmount, &o.Status, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// ListByUser returns a user's order history, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	query := `
		SELECT id, reference, user_id, total_amount, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []order.Order{}
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.UserID, &o.TotalAmount, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID int64) ([]order.OrderItem, error) {
	query := `SELECT id, order_id, subscription_id, price FROM order_items WHERE order_id = $1`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []order.OrderItem{}
	for rows.Next() {
		var item order.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.SubscriptionID, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateStatusWithTx transitions order status inside tx.
func (r *OrderRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id int64, status order.OrderStatus) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2`

	result, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ItemIDsWithTx returns the item ids of an order inside tx.
func (r *OrderRepository) ItemIDsWithTx(ctx context.Context, tx pgx.Tx, orderID int64) ([]int64, error) {
	query := `SELECT id FROM order_items WHERE order_id = $1`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order item ids: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order item id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SellerIDs returns the distinct sellers whose products appear in an
// order, for dashboard cache invalidation after sales events.
func (r *OrderRepository) SellerIDs(ctx context.Context, orderID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT sw.seller_id
		FROM order_items oi
		JOIN software_subscriptions ss ON ss.id = oi.subscription_id
		JOIN software sw ON sw.id = ss.software_id
		WHERE oi.order_id = $1
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order sellers: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan seller id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
