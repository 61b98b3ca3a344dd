// internal/repository/postgres/software_subscription_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/catalog"
)

// SoftwareSubscriptionRepository stores the pricing edges between software
// and subscription plan templates.
type SoftwareSubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSoftwareSubscriptionRepository(db *pgxpool.Pool) *SoftwareSubscriptionRepository {
	return &SoftwareSubscriptionRepository{db: db}
}

// CreateWithTx creates a new pricing edge inside tx.
func (r *SoftwareSubscriptionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, s *catalog.SoftwareSubscription) error {
	query := `
		INSERT INTO software_subscriptions (software_id, subscription_plan_id, base_price, price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		s.SoftwareID, s.SubscriptionPlanID, s.BasePrice, s.Price, s.Status,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create software subscription: %w", translateError(err))
	}
	return nil
}

// FindByIDs fetches pricing edges by id, joined with their plan name and
// duration. Only rows with status ACTIVE are returned; the caller compares
// counts to detect invalid ids.
func (r *SoftwareSubscriptionRepository) FindByIDs(ctx context.Context, ids []int64) ([]catalog.SoftwareSubscription, error) {
	query := `
		SELECT ss.id, ss.software_id, ss.subscription_plan_id, ss.base_price, ss.price,
		       ss.status, ss.created_at, ss.updated_at, sp.name, sp.duration
		FROM software_subscriptions ss
		JOIN subscription_plans sp ON sp.id = ss.subscription_plan_id
		WHERE ss.id = ANY($1) AND ss.status = 'ACTIVE'
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch software subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []catalog.SoftwareSubscription{}
	for rows.Next() {
		var s catalog.SoftwareSubscription
		err := rows.Scan(
			&s.ID, &s.SoftwareID, &s.SubscriptionPlanID, &s.BasePrice, &s.Price,
			&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.PlanName, &s.PlanDuration,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan software subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// ListBySoftware returns all active pricing edges of one product.
func (r *SoftwareSubscriptionRepository) ListBySoftware(ctx context.Context, softwareID int64) ([]catalog.SoftwareSubscription, error) {
	query := `
		SELECT ss.id, ss.software_id, ss.subscription_plan_id, ss.base_price, ss.price,
		       ss.status, ss.created_at, ss.updated_at, sp.name, sp.duration
		FROM software_subscriptions ss
		JOIN subscription_plans sp ON sp.id = ss.subscription_plan_id
		WHERE ss.software_id = $1 AND ss.status = 'ACTIVE'
		ORDER BY sp.duration ASC
	`

	rows, err := r.db.Query(ctx, query, softwareID)
	if err != nil {
		return nil, fmt.Errorf("failed to list software subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []catalog.SoftwareSubscription{}
	for rows.Next() {
		var s catalog.SoftwareSubscription
		err := rows.Scan(
			&s.ID, &s.SoftwareID, &s.SubscriptionPlanID, &s.BasePrice, &s.Price,
			&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.PlanName, &s.PlanDuration,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan software subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, nil
}

// LowestActivePriceWithTx returns the cheapest active pricing edge of a
// product inside tx, or ErrNotFound-mapped nil when the product has no
// active plans. Tie-break between equal prices follows the store's default
// ordering.
func (r *SoftwareSubscriptionRepository) LowestActivePriceWithTx(ctx context.Context, tx pgx.Tx, softwareID int64) (*catalog.SoftwareSubscription, error) {
	query := `
		SELECT ss.id, ss.software_id, ss.subscription_plan_id, ss.base_price, ss.price,
		       ss.status, ss.created_at, ss.updated_at, sp.name, sp.duration
		FROM software_subscriptions ss
		JOIN subscription_plans sp ON sp.id = ss.subscription_plan_id
		WHERE ss.software_id = $1 AND ss.status = 'ACTIVE'
		ORDER BY ss.price ASC
		LIMIT 1
	`

	var s catalog.SoftwareSubscription
	err := tx.QueryRow(ctx, query, softwareID).Scan(
		&s.ID, &s.SoftwareID, &s.SubscriptionPlanID, &s.BasePrice, &s.Price,
		&s.Status, &s.CreatedAt, &s.UpdatedAt, &s.PlanName, &s.PlanDuration,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lowest active price: %w", err)
	}
	return &s, nil
}

// RepriceAllWithTx re-derives price from base_price for every pricing edge
// of a product under the given discount, regardless of status.
func (r *SoftwareSubscriptionRepository) RepriceAllWithTx(ctx context.Context, tx pgx.Tx, softwareID int64, discount float64) error {
	query := `
		UPDATE software_subscriptions
		SET price = ROUND((base_price * (1 - $1::numeric / 100))::numeric, 2), updated_at = NOW()
		WHERE software_id = $2
	`

	if _, err := tx.Exec(ctx, query, discount, softwareID); err != nil {
		return fmt.Errorf("failed to reprice software subscriptions: %w", err)
	}
	return nil
}

// CancelActiveWithTx marks every active pricing edge of a product canceled.
// Rows are never hard-deleted while referenced by existing orders.
func (r *SoftwareSubscriptionRepository) CancelActiveWithTx(ctx context.Context, tx pgx.Tx, softwareID int64) error {
	query := `
		UPDATE software_subscriptions
		SET status = 'CANCELED', updated_at = NOW()
		WHERE software_id = $1 AND status = 'ACTIVE'
	`

	if _, err := tx.Exec(ctx, query, softwareID); err != nil {
		return fmt.Errorf("failed to cancel software subscriptions: %w", err)
	}
	return nil
}

// UpsertWithTx reactivates an existing (software, plan) edge with a new
// base price, or creates a fresh active row when none exists. Price must
// already be derived under the product's current discount.
func (r *SoftwareSubscriptionRepository) UpsertWithTx(ctx context.Context, tx pgx.Tx, s *catalog.SoftwareSubscription) error {
	query := `
		INSERT INTO software_subscriptions (software_id, subscription_plan_id, base_price, price, status)
		VALUES ($1, $2, $3, $4, 'ACTIVE')
		ON CONFLICT (software_id, subscription_plan_id)
		DO UPDATE SET base_price = EXCLUDED.base_price,
		              price = EXCLUDED.price,
		              status = 'ACTIVE',
		              updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		s.SoftwareID, s.SubscriptionPlanID, s.BasePrice, s.Price,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert software subscription: %w", err)
	}
	s.Status = catalog.SubscriptionActive
	return nil
}
