// internal/repository/postgres/price_history_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/catalog"
)

type PriceHistoryRepository struct {
	db *pgxpool.Pool
}

func NewPriceHistoryRepository(db *pgxpool.Pool) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// CreateWithTx appends an immutable price history record inside tx.
func (r *PriceHistoryRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, h *catalog.PriceHistory) error {
	query := `
		INSERT INTO price_history (software_id, old_price, new_price, changed_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, changed_at
	`

	err := tx.QueryRow(ctx, query, h.SoftwareID, h.OldPrice, h.NewPrice).Scan(&h.ID, &h.ChangedAt)
	if err != nil {
		return fmt.Errorf("failed to create price history: %w", err)
	}
	return nil
}

// ListBySoftware returns the price history of a product, newest first.
func (r *PriceHistoryRepository) ListBySoftware(ctx context.Context, softwareID int64) ([]catalog.PriceHistory, error) {
	query := `
		SELECT id, software_id, old_price, new_price, changed_at
		FROM price_history
		WHERE software_id = $1
		ORDER BY changed_at DESC
	`

	rows, err := r.db.Query(ctx, query, softwareID)
	if err != nil {
		return nil, fmt.Errorf("failed to list price history: %w", err)
	}
	defer rows.Close()

	history := []catalog.PriceHistory{}
	for rows.Next() {
		var h catalog.PriceHistory
		if err := rows.Scan(&h.ID, &h.SoftwareID, &h.OldPrice, &h.NewPrice, &h.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price history: %w", err)
		}
		history = append(history, h)
	}
	return history, nil
}
