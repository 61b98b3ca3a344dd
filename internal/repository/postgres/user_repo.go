// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a user. If the role is seller, a seller profile row is
// created alongside in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO users (email, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := tx.QueryRow(ctx, query, u.Email, u.Username, u.PasswordHash, u.Role).Scan(&u.ID, &u.CreatedAt); err != nil {
		return fmt.Errorf("failed to create user: %w", translateError(err))
	}

	if u.Role == user.RoleSeller {
		var sellerID int64
		sellerQuery := `INSERT INTO seller_profiles (user_id) VALUES ($1) RETURNING id`
		if err := tx.QueryRow(ctx, sellerQuery, u.ID).Scan(&sellerID); err != nil {
			return fmt.Errorf("failed to create seller profile: %w", err)
		}
		u.SellerID.Int64 = sellerID
		u.SellerID.Valid = true

		updateQuery := `UPDATE users SET seller_id = $1 WHERE id = $2`
		if _, err := tx.Exec(ctx, updateQuery, sellerID, u.ID); err != nil {
			return fmt.Errorf("failed to link seller profile: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// FindByEmail retrieves a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, email, username, password_hash, role, seller_id, created_at
		FROM users
		WHERE email = $1
	`

	var u user.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.SellerID, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

// FindByID retrieves a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := `
		SELECT id, email, username, password_hash, role, seller_id, created_at
		FROM users
		WHERE id = $1
	`

	var u user.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.SellerID, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}
