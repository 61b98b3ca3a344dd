// internal/repository/postgres/dashboard_repo.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SellerStats is the aggregate block behind the seller dashboard.
type SellerStats struct {
	TotalProducts  int64   `json:"total_products"`
	UnitsSold      int64   `json:"units_sold"`
	TotalRevenue   float64 `json:"total_revenue"`
	ActiveLicenses int64   `json:"active_licenses"`
}

type DashboardRepository struct {
	db *pgxpool.Pool
}

func NewDashboardRepository(db *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// SellerStats aggregates sales figures across a seller's products. Revenue
// counts only completed orders, priced at the purchase-time snapshot.
func (r *DashboardRepository) SellerStats(ctx context.Context, sellerID int64) (*SellerStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM software WHERE seller_id = $1) AS total_products,
			COUNT(oi.id) AS units_sold,
			COALESCE(SUM(oi.price), 0) AS total_revenue,
			COUNT(lk.id) FILTER (WHERE lk.is_active AND NOT lk.is_expired) AS active_licenses
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id AND o.status = 'COMPLETED'
		JOIN software_subscriptions ss ON ss.id = oi.subscription_id
		JOIN software sw ON sw.id = ss.software_id AND sw.seller_id = $1
		LEFT JOIN license_keys lk ON lk.order_item_id = oi.id
	`

	var stats SellerStats
	err := r.db.QueryRow(ctx, query, sellerID).Scan(
		&stats.TotalProducts, &stats.UnitsSold, &stats.TotalRevenue, &stats.ActiveLicenses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller stats: %w", err)
	}
	return &stats, nil
}
