// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/order"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreateWithTx records a payment inside tx. A duplicate transaction id is
// surfaced as a duplicate-entry conflict by the unique index.
func (r *PaymentRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *order.Payment) error {
	query := `
		INSERT INTO payments (transaction_id, amount, method, status, user_id, order_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx, query,
		p.TransactionID, p.Amount, p.Method, p.Status, p.UserID, p.OrderID,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", translateError(err))
	}
	return nil
}

// ExistsByTransactionID reports whether a transaction id was already
// processed.
func (r *PaymentRepository) ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM payments WHERE transaction_id = $1)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, transactionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payment: %w", err)
	}
	return exists, nil
}
