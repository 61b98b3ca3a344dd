// internal/repository/postgres/notification_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"softmarket-service/internal/domain/notification"
	xerrors "softmarket-service/internal/pkg/errors"
)

type NotificationRepository struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch bulk-inserts notifications and fills in generated fields.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []notification.Notification) ([]notification.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, software_id, message, type, is_read)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, created_at
	`

	created := make([]notification.Notification, 0, len(notifications))
	for _, n := range notifications {
		if err := r.db.QueryRow(ctx, query, n.UserID, n.SoftwareID, n.Message, n.Type).Scan(&n.ID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to create notification: %w", err)
		}
		created = append(created, n)
	}
	return created, nil
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]notification.Notification, error) {
	query := `
		SELECT id, user_id, software_id, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.SoftwareID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkAsRead marks one of the user's notifications read.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID int64) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// DeleteReadOlderThan deletes read notifications older than the cutoff and
// returns the deletion count. Idempotent; intended for the retention job.
func (r *NotificationRepository) DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM notifications WHERE is_read = true AND created_at < $1`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete read notifications: %w", err)
	}
	return result.RowsAffected(), nil
}
