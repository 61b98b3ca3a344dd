// internal/repository/postgres/plan_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/catalog"
	xerrors "softmarket-service/internal/pkg/errors"
)

// SubscriptionPlanRepository stores the shared duration templates.
type SubscriptionPlanRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionPlanRepository(db *pgxpool.Pool) *SubscriptionPlanRepository {
	return &SubscriptionPlanRepository{db: db}
}

// Create creates a new duration template
func (r *SubscriptionPlanRepository) Create(ctx context.Context, p *catalog.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (name, duration)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, p.Name, p.Duration).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription plan: %w", translateError(err))
	}
	return nil
}

// FindByID retrieves a duration template by ID
func (r *SubscriptionPlanRepository) FindByID(ctx context.Context, id int64) (*catalog.SubscriptionPlan, error) {
	query := `SELECT id, name, duration, created_at FROM subscription_plans WHERE id = $1`

	var p catalog.SubscriptionPlan
	err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Duration, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription plan: %w", err)
	}
	return &p, nil
}

// List retrieves all duration templates
func (r *SubscriptionPlanRepository) List(ctx context.Context) ([]catalog.SubscriptionPlan, error) {
	query := `SELECT id, name, duration, created_at FROM subscription_plans ORDER BY duration ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription plans: %w", err)
	}
	defer rows.Close()

	plans := []catalog.SubscriptionPlan{}
	for rows.Next() {
		var p catalog.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Duration, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscription plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Update updates a duration template
func (r *SubscriptionPlanRepository) Update(ctx context.Context, id int64, req *catalog.UpdatePlanRequest) error {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if req.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *req.Name)
		argPos++
	}
	if req.Duration != nil {
		sets = append(sets, fmt.Sprintf("duration = $%d", argPos))
		args = append(args, *req.Duration)
		argPos++
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE subscription_plans SET %s WHERE id = $%d`, strings.Join(sets, ", "), argPos)
	args = append(args, id)

	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update subscription plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Delete deletes a duration template
func (r *SubscriptionPlanRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM subscription_plans WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
