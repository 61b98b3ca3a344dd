// internal/service/notification/notification_service.go
package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"softmarket-service/internal/domain/notification"
	"softmarket-service/internal/queue"
)

// WishlistFinder resolves the audience of a price-drop fan-out.
type WishlistFinder interface {
	UserIDsBySoftware(ctx context.Context, softwareID int64) ([]int64, error)
}

// Store persists notification rows.
type Store interface {
	CreateBatch(ctx context.Context, notifications []notification.Notification) ([]notification.Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]notification.Notification, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	DeleteReadOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// EventPublisher pushes created notifications toward connected websocket
// clients. Publishing is best effort; a failure never fails the job.
type EventPublisher interface {
	Publish(ctx context.Context, event *notification.Event) error
}

// Service is the queue consumer side of notification dispatch plus the
// read API. Rows are only ever created here, never on the request path.
type Service struct {
	wishlist  WishlistFinder
	store     Store
	publisher EventPublisher
	logger    *zap.Logger
}

func NewService(wishlist WishlistFinder, store Store, publisher EventPublisher, logger *zap.Logger) *Service {
	return &Service{
		wishlist:  wishlist,
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// PriceDropMessage is the user-facing text for a lowest-price decrease.
func PriceDropMessage(oldPrice, newPrice float64) string {
	return fmt.Sprintf("The price has dropped from $%.2f to $%.2f!", oldPrice, newPrice)
}

// HandlePriceDrop fans a price drop out to every user who wishlisted the
// product. An empty audience completes the job without writing anything.
func (s *Service) HandlePriceDrop(ctx context.Context, job *queue.Job) error {
	var payload notification.PriceDropPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode price drop payload: %w", err)
	}

	userIDs, err := s.wishlist.UserIDsBySoftware(ctx, payload.ProductID)
	if err != nil {
		return fmt.Errorf("failed to resolve wishlist audience: %w", err)
	}
	if len(userIDs) == 0 {
		s.logger.Debug("price drop had no audience",
			zap.Int64("software_id", payload.ProductID))
		return nil
	}

	message := PriceDropMessage(payload.OldPrice, payload.NewPrice)
	rows := make([]notification.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, notification.Notification{
			UserID:     userID,
			SoftwareID: sql.NullInt64{Int64: payload.ProductID, Valid: true},
			Message:    message,
			Type:       notification.TypePriceDrop,
		})
	}

	created, err := s.store.CreateBatch(ctx, rows)
	if err != nil {
		return fmt.Errorf("failed to create price drop notifications: %w", err)
	}

	s.publishAll(ctx, created)
	s.logger.Info("price drop dispatched",
		zap.Int64("software_id", payload.ProductID),
		zap.Int("recipients", len(created)))
	return nil
}

// HandleOrderCompleted notifies the buyer that their payment went through.
func (s *Service) HandleOrderCompleted(ctx context.Context, job *queue.Job) error {
	var payload notification.OrderCompletedPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode order completed payload: %w", err)
	}

	rows := []notification.Notification{{
		UserID:  payload.UserID,
		Message: fmt.Sprintf("Your order #%d has been completed. Total: $%.2f.", payload.OrderID, payload.TotalAmount),
		Type:    notification.TypeOrderCompleted,
	}}

	created, err := s.store.CreateBatch(ctx, rows)
	if err != nil {
		return fmt.Errorf("failed to create order notification: %w", err)
	}

	s.publishAll(ctx, created)
	return nil
}

func (s *Service) publishAll(ctx context.Context, created []notification.Notification) {
	if s.publisher == nil {
		return
	}
	for i := range created {
		n := created[i]
		if err := s.publisher.Publish(ctx, &notification.Event{UserID: n.UserID, Notification: &n}); err != nil {
			s.logger.Warn("failed to publish notification event",
				zap.Int64("user_id", n.UserID),
				zap.Error(err))
		}
	}
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]notification.Notification, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	return s.store.MarkAsRead(ctx, id, userID)
}

// CleanupRead deletes read notifications older than the retention window.
func (s *Service) CleanupRead(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.store.DeleteReadOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("read notifications cleaned up", zap.Int64("count", n))
	}
	return n, nil
}
