// internal/repository/postgres/software_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/catalog"
	xerrors "softmarket-service/internal/pkg/errors"
)

type SoftwareRepository struct {
	db *pgxpool.Pool
}

func NewSoftwareRepository(db *pgxpool.Pool) *SoftwareRepository {
	return &SoftwareRepository{db: db}
}

const softwareColumns = `id, name, description, features, requirements, file_path,
	discount, status, average_rating, category_id, seller_id, created_at, updated_at`

func scanSoftware(row pgx.Row, s *catalog.Software) error {
	return row.Scan(
		&s.ID, &s.Name, &s.Description, &s.Features, &s.Requirements, &s.FilePath,
		&s.Discount, &s.Status, &s.AverageRating, &s.CategoryID, &s.SellerID,
		&s.CreatedAt, &s.UpdatedAt,
	)
}

// CreateWithTx creates a new software listing inside an open transaction
// so the listing commits or rolls back together with its subscription
// options.
func (r *SoftwareRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, s *catalog.Software) error {
	query := `
		INSERT INTO software (name, description, features, requirements, file_path,
			discount, status, category_id, seller_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		s.Name, s.Description, s.Features, s.Requirements, s.FilePath,
		s.Discount, s.Status, s.CategoryID, s.SellerID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create software: %w", translateError(err))
	}
	return nil
}

// FindByID retrieves a software listing by ID
func (r *SoftwareRepository) FindByID(ctx context.Context, id int64) (*catalog.Software, error) {
	query := fmt.Sprintf(`SELECT %s FROM software WHERE id = $1`, softwareColumns)

	var s catalog.Software
	if err := scanSoftware(r.db.QueryRow(ctx, query, id), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find software: %w", err)
	}
	return &s, nil
}

// FindByIDForUpdate retrieves a software row inside tx, locking it for the
// duration of the transaction.
func (r *SoftwareRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*catalog.Software, error) {
	query := fmt.Sprintf(`SELECT %s FROM software WHERE id = $1 FOR UPDATE`, softwareColumns)

	var s catalog.Software
	if err := scanSoftware(tx.QueryRow(ctx, query, id), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find software: %w", err)
	}
	return &s, nil
}

// List retrieves listings with filters. Defaults to active products only.
func (r *SoftwareRepository) List(ctx context.Context, filters *catalog.ProductListFilters) ([]catalog.Software, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	status := int(catalog.SoftwareActive)
	if filters != nil && filters.Status != nil {
		status = *filters.Status
	}
	conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
	args = append(args, status)
	argPos++

	if filters != nil && filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argPos))
		args = append(args, *filters.CategoryID)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT %s FROM software
		WHERE %s
		ORDER BY created_at DESC
	`, softwareColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list software: %w", err)
	}
	defer rows.Close()

	products := []catalog.Software{}
	for rows.Next() {
		var s catalog.Software
		if err := scanSoftware(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan software: %w", err)
		}
		products = append(products, s)
	}
	return products, nil
}

// UpdatePatchWithTx applies a partial update: only fields present in the
// patch are written, everything else is left untouched.
func (r *SoftwareRepository) UpdatePatchWithTx(ctx context.Context, tx pgx.Tx, id int64, patch *catalog.ProductPatch) error {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if patch.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *patch.Name)
		argPos++
	}
	if patch.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argPos))
		args = append(args, *patch.Description)
		argPos++
	}
	if patch.Features != nil {
		sets = append(sets, fmt.Sprintf("features = $%d", argPos))
		args = append(args, *patch.Features)
		argPos++
	}
	if patch.Requirements != nil {
		sets = append(sets, fmt.Sprintf("requirements = $%d", argPos))
		args = append(args, *patch.Requirements)
		argPos++
	}
	if patch.Discount != nil {
		sets = append(sets, fmt.Sprintf("discount = $%d", argPos))
		args = append(args, *patch.Discount)
		argPos++
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now())
	argPos++

	query := fmt.Sprintf(`UPDATE software SET %s WHERE id = $%d`, strings.Join(sets, ", "), argPos)
	args = append(args, id)

	result, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update software: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus transitions the moderation status (admin only).
func (r *SoftwareRepository) UpdateStatus(ctx context.Context, id int64, status catalog.SoftwareStatus) error {
	query := `UPDATE software SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update software status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
