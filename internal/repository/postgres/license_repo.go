// internal/repository/postgres/license_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/license"
	xerrors "softmarket-service/internal/pkg/errors"
)

type LicenseRepository struct {
	db *pgxpool.Pool
}

func NewLicenseRepository(db *pgxpool.Pool) *LicenseRepository {
	return &LicenseRepository{db: db}
}

const licenseJoinedColumns = `lk.id, lk.key, lk.user_id, lk.subscription_id, lk.order_item_id,
	lk.valid_until, lk.is_active, lk.is_expired, lk.redeemed_at, lk.created_at,
	sw.name, sp.name, sp.duration`

const licenseJoins = `
	FROM license_keys lk
	JOIN software_subscriptions ss ON ss.id = lk.subscription_id
	JOIN software sw ON sw.id = ss.software_id
	JOIN subscription_plans sp ON sp.id = ss.subscription_plan_id`

func scanLicenseJoined(row pgx.Row, l *license.LicenseKey) error {
	return row.Scan(
		&l.ID, &l.Key, &l.UserID, &l.SubscriptionID, &l.OrderItemID,
		&l.ValidUntil, &l.IsActive, &l.IsExpired, &l.RedeemedAt, &l.CreatedAt,
		&l.SoftwareName, &l.PlanName, &l.PlanDuration,
	)
}

// CreateBatchWithTx bulk-creates license keys inside tx. Key uniqueness is
// enforced by the unique index; a collision surfaces as a conflict.
func (r *LicenseRepository) CreateBatchWithTx(ctx context.Context, tx pgx.Tx, licenses []license.LicenseKey) ([]license.LicenseKey, error) {
	query := `
		INSERT INTO license_keys (key, user_id, subscription_id, order_item_id, valid_until, is_active, is_expired)
		VALUES ($1, $2, $3, $4, $5, false, false)
		RETURNING id, created_at
	`

	created := make([]license.LicenseKey, 0, len(licenses))
	for _, l := range licenses {
		err := tx.QueryRow(ctx, query, l.Key, l.UserID, l.SubscriptionID, l.OrderItemID, l.ValidUntil).
			Scan(&l.ID, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create license key: %w", translateError(err))
		}
		created = append(created, l)
	}
	return created, nil
}

// FindByKeyAndUser looks a key up scoped to its owner.
func (r *LicenseRepository) FindByKeyAndUser(ctx context.Context, key string, userID int64) (*license.LicenseKey, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE lk.key = $1 AND lk.user_id = $2`, licenseJoinedColumns, licenseJoins)

	var l license.LicenseKey
	if err := scanLicenseJoined(r.db.QueryRow(ctx, query, key, userID), &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find license: %w", err)
	}
	return &l, nil
}

// FindByIDAndUser looks a license up by id scoped to its owner.
func (r *LicenseRepository) FindByIDAndUser(ctx context.Context, id, userID int64) (*license.LicenseKey, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE lk.id = $1 AND lk.user_id = $2`, licenseJoinedColumns, licenseJoins)

	var l license.LicenseKey
	if err := scanLicenseJoined(r.db.QueryRow(ctx, query, id, userID), &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find license: %w", err)
	}
	return &l, nil
}

// ListByUser returns all of a user's licenses, newest first.
func (r *LicenseRepository) ListByUser(ctx context.Context, userID int64) ([]license.LicenseKey, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE lk.user_id = $1 ORDER BY lk.created_at DESC`, licenseJoinedColumns, licenseJoins)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list licenses: %w", err)
	}
	defer rows.Close()

	licenses := []license.LicenseKey{}
	for rows.Next() {
		var l license.LicenseKey
		if err := scanLicenseJoined(rows, &l); err != nil {
			return nil, fmt.Errorf("failed to scan license: %w", err)
		}
		licenses = append(licenses, l)
	}
	return licenses, nil
}

// Activate marks a license redeemed. The WHERE guard keeps the operation
// idempotent at the store level.
func (r *LicenseRepository) Activate(ctx context.Context, id int64) error {
	query := `
		UPDATE license_keys
		SET redeemed_at = NOW(), is_active = true
		WHERE id = $1 AND redeemed_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to activate license: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrConflict
	}
	return nil
}

// Deactivate clears is_active only; valid_until and is_expired are kept so
// a deactivated license stays distinguishable from an expired one.
func (r *LicenseRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE license_keys SET is_active = false WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate license: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Renew extends validity to the given date and resets the expiry flags.
func (r *LicenseRepository) Renew(ctx context.Context, id int64, newValidUntil time.Time) error {
	query := `
		UPDATE license_keys
		SET valid_until = $1, is_expired = false, is_active = true
		WHERE id = $2
	`

	result, err := r.db.Exec(ctx, query, newValidUntil, id)
	if err != nil {
		return fmt.Errorf("failed to renew license: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// MarkExpired flips is_expired on every overdue license. Idempotent; safe
// to run on a schedule.
func (r *LicenseRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE license_keys
		SET is_expired = true
		WHERE valid_until < $1 AND is_expired = false
	`

	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark expired licenses: %w", err)
	}
	return result.RowsAffected(), nil
}

// ExpireByOrderItemsWithTx force-expires the licenses attached to the given
// order items, used by order cancellation.
func (r *LicenseRepository) ExpireByOrderItemsWithTx(ctx context.Context, tx pgx.Tx, orderItemIDs []int64) error {
	query := `
		UPDATE license_keys
		SET is_expired = true, is_active = false, valid_until = NOW()
		WHERE order_item_id = ANY($1)
	`

	if _, err := tx.Exec(ctx, query, orderItemIDs); err != nil {
		return fmt.Errorf("failed to expire licenses: %w", err)
	}
	return nil
}
