// internal/service/order/order_service.go
package order

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/catalog"
	"softmarket-service/internal/domain/license"
	"softmarket-service/internal/domain/notification"
	"softmarket-service/internal/domain/order"
	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
	"softmarket-service/internal/pkg/token"
)

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// OrderStore persists orders and their line items.
type OrderStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, o *order.Order) error
	CreateItemsWithTx(ctx context.Context, tx pgx.Tx, items []order.OrderItem) ([]order.OrderItem, error)
	FindByID(ctx context.Context, id int64) (*order.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]order.Order, error)
	UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id int64, status order.OrderStatus) error
	ItemIDsWithTx(ctx context.Context, tx pgx.Tx, orderID int64) ([]int64, error)
	SellerIDs(ctx context.Context, orderID int64) ([]int64, error)
}

// SubscriptionFinder resolves requested plan ids to active priced plans.
type SubscriptionFinder interface {
	FindByIDs(ctx context.Context, ids []int64) ([]catalog.SoftwareSubscription, error)
}

// LicenseIssuer creates and expires the keys an order carries.
type LicenseIssuer interface {
	CreateBatchWithTx(ctx context.Context, tx pgx.Tx, licenses []license.LicenseKey) ([]license.LicenseKey, error)
	ExpireByOrderItemsWithTx(ctx context.Context, tx pgx.Tx, orderItemIDs []int64) error
}

// PaymentStore persists gateway payments and refunds.
type PaymentStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, p *order.Payment) error
	ExistsByTransactionID(ctx context.Context, transactionID string) (bool, error)
}

// CartStore removes purchased entries from the buyer's cart.
type CartStore interface {
	RemoveBySubscriptions(ctx context.Context, userID int64, subscriptionIDs []int64) error
}

// Enqueuer hands a job to the notification dispatch queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload interface{}) error
}

// DashboardInvalidator drops cached seller aggregates after a sales
// event changes them.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, sellerID int64)
}

// Service owns checkout and payment confirmation. Order, order items and
// license keys are created in one transaction; either all of them exist
// or none do.
type Service struct {
	db          TxRunner
	orderRepo   OrderStore
	subRepo     SubscriptionFinder
	licenseRepo LicenseIssuer
	paymentRepo PaymentStore
	cartRepo    CartStore
	queue       Enqueuer
	dashboards  DashboardInvalidator
	logger      *zap.Logger

	allowDuplicateItems bool
}

func NewService(
	db TxRunner,
	orderRepo OrderStore,
	subRepo SubscriptionFinder,
	licenseRepo LicenseIssuer,
	paymentRepo PaymentStore,
	cartRepo CartStore,
	q Enqueuer,
	dashboards DashboardInvalidator,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:          db,
		orderRepo:   orderRepo,
		subRepo:     subRepo,
		licenseRepo: licenseRepo,
		paymentRepo: paymentRepo,
		cartRepo:    cartRepo,
		queue:       q,
		dashboards:  dashboards,
		logger:      logger,

		allowDuplicateItems: true,
	}
}

// SetAllowDuplicateItems controls whether an order may reference the same
// subscription plan more than once. Duplicates yield one line item and one
// license key each.
func (s *Service) SetAllowDuplicateItems(allow bool) {
	s.allowDuplicateItems = allow
}

// ValidateItems resolves the requested line items against the fetched
// active subscription plans and returns the order total. Every requested
// id must resolve; a missing or inactive plan fails the whole order.
func ValidateItems(items []order.OrderItemInput, subs []catalog.SoftwareSubscription, allowDuplicates bool) (float64, map[int64]catalog.SoftwareSubscription, error) {
	if len(items) == 0 {
		return 0, nil, xerrors.Wrap(xerrors.ErrInvalidInput, "order must contain at least one item")
	}

	byID := make(map[int64]catalog.SoftwareSubscription, len(subs))
	for _, sub := range subs {
		byID[sub.ID] = sub
	}

	seen := make(map[int64]bool, len(items))
	total := 0.0
	for _, item := range items {
		if seen[item.SubscriptionID] && !allowDuplicates {
			return 0, nil, xerrors.Wrap(xerrors.ErrInvalidInput, "duplicate subscription in order")
		}
		seen[item.SubscriptionID] = true

		sub, ok := byID[item.SubscriptionID]
		if !ok {
			return 0, nil, xerrors.Wrap(xerrors.ErrInvalidInput, "one or more subscriptions are invalid or inactive")
		}
		total += sub.Price
	}
	return math.Round(total*100) / 100, byID, nil
}

func uniqueIDs(items []order.OrderItemInput) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if !seen[item.SubscriptionID] {
			seen[item.SubscriptionID] = true
			ids = append(ids, item.SubscriptionID)
		}
	}
	return ids
}

// CreateOrder runs the checkout: it snapshots current prices into line
// items and issues one license key per line item, valid for the plan's
// duration starting now. Purchased entries are removed from the caller's
// cart on success; anything else in the cart stays.
func (s *Service) CreateOrder(ctx context.Context, p user.Principal, req *order.CreateOrderRequest) (*order.Order, error) {
	subs, err := s.subRepo.FindByIDs(ctx, uniqueIDs(req.OrderItems))
	if err != nil {
		return nil, err
	}

	total, byID, err := ValidateItems(req.OrderItems, subs, s.allowDuplicateItems)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o := &order.Order{
		Reference:   ulid.Make().String(),
		UserID:      p.UserID,
		TotalAmount: total,
		Status:      order.StatusPending,
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.orderRepo.CreateWithTx(ctx, tx, o); err != nil {
			return err
		}

		items := make([]order.OrderItem, 0, len(req.OrderItems))
		for _, in := range req.OrderItems {
			items = append(items, order.OrderItem{
				OrderID:        o.ID,
				SubscriptionID: in.SubscriptionID,
				Price:          byID[in.SubscriptionID].Price,
			})
		}
		items, err := s.orderRepo.CreateItemsWithTx(ctx, tx, items)
		if err != nil {
			return err
		}

		licenses := make([]license.LicenseKey, 0, len(items))
		for _, item := range items {
			sub := byID[item.SubscriptionID]
			key, err := token.NewLicenseKey()
			if err != nil {
				return err
			}
			licenses = append(licenses, license.LicenseKey{
				Key:            key,
				UserID:         p.UserID,
				SubscriptionID: item.SubscriptionID,
				OrderItemID:    sql.NullInt64{Int64: item.ID, Valid: true},
				ValidUntil:     now.AddDate(0, sub.PlanDuration, 0),
			})
		}
		if _, err := s.licenseRepo.CreateBatchWithTx(ctx, tx, licenses); err != nil {
			return err
		}

		o.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.RemoveBySubscriptions(ctx, p.UserID, uniqueIDs(req.OrderItems)); err != nil {
		s.logger.Warn("failed to remove purchased items from cart",
			zap.Int64("user_id", p.UserID),
			zap.Error(err))
	}

	s.logger.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.String("reference", o.Reference),
		zap.Int64("user_id", p.UserID),
		zap.Float64("total", total))
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, p user.Principal, id int64) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != p.UserID && !p.IsAdmin() {
		return nil, xerrors.ErrForbidden
	}
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context, p user.Principal) ([]order.Order, error) {
	return s.orderRepo.ListByUser(ctx, p.UserID)
}

// ConfirmPayment records an external gateway payment. A transaction id
// that was seen before is rejected with a conflict so gateway retries
// cannot double-complete an order.
func (s *Service) ConfirmPayment(ctx context.Context, p user.Principal, req *order.CreatePaymentRequest) (*order.Payment, error) {
	exists, err := s.paymentRepo.ExistsByTransactionID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, xerrors.Wrap(xerrors.ErrConflict, "transaction already recorded")
	}

	var o *order.Order
	if req.OrderID != nil {
		o, err = s.orderRepo.FindByID(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		if o.UserID != p.UserID && !p.IsAdmin() {
			return nil, xerrors.ErrForbidden
		}
		if o.Status != order.StatusPending {
			return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "order is not pending")
		}
	}

	payment := &order.Payment{
		TransactionID: req.TransactionID,
		Amount:        req.Amount,
		Method:        req.Method,
		Status:        order.PaymentCompleted,
		UserID:        p.UserID,
	}
	if req.OrderID != nil {
		payment.OrderID = sql.NullInt64{Int64: *req.OrderID, Valid: true}
	}

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.paymentRepo.CreateWithTx(ctx, tx, payment); err != nil {
			if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
				return xerrors.Wrap(xerrors.ErrConflict, "transaction already recorded")
			}
			return err
		}
		if o != nil {
			return s.orderRepo.UpdateStatusWithTx(ctx, tx, o.ID, order.StatusCompleted)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if o != nil {
		payload := notification.OrderCompletedPayload{
			UserID:      o.UserID,
			OrderID:     o.ID,
			TotalAmount: o.TotalAmount,
		}
		if err := s.queue.Enqueue(ctx, string(notification.TypeOrderCompleted), payload); err != nil {
			s.logger.Error("failed to enqueue order completed job",
				zap.Int64("order_id", o.ID),
				zap.Error(err))
		}
		s.invalidateDashboards(ctx, o.ID)
	}

	s.logger.Info("payment recorded",
		zap.String("transaction_id", payment.TransactionID),
		zap.Int64("user_id", p.UserID))
	return payment, nil
}

// CancelOrderWithRefund cancels a pending or completed order, expires the
// licenses it issued and books a compensating refund payment, all in one
// transaction.
func (s *Service) CancelOrderWithRefund(ctx context.Context, p user.Principal, orderID int64) error {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.UserID != p.UserID && !p.IsAdmin() {
		return xerrors.ErrForbidden
	}
	if o.Status == order.StatusCancelled || o.Status == order.StatusRefunded {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "order is already cancelled")
	}

	refunded := o.Status == order.StatusCompleted

	err = s.db.WithTx(ctx, func(tx pgx.Tx) error {
		status := order.StatusCancelled
		if refunded {
			status = order.StatusRefunded
		}
		if err := s.orderRepo.UpdateStatusWithTx(ctx, tx, orderID, status); err != nil {
			return err
		}

		itemIDs, err := s.orderRepo.ItemIDsWithTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := s.licenseRepo.ExpireByOrderItemsWithTx(ctx, tx, itemIDs); err != nil {
			return err
		}

		if refunded {
			refund := &order.Payment{
				TransactionID: "REFUND-" + ulid.Make().String(),
				Amount:        -o.TotalAmount,
				Method:        "REFUND",
				Status:        order.PaymentCompleted,
				UserID:        o.UserID,
				OrderID:       sql.NullInt64{Int64: orderID, Valid: true},
			}
			if err := s.paymentRepo.CreateWithTx(ctx, tx, refund); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if refunded {
		s.invalidateDashboards(ctx, orderID)
	}
	return nil
}

// invalidateDashboards drops the cached dashboard of every seller with a
// line in the order. Best effort; stale aggregates expire on their own.
func (s *Service) invalidateDashboards(ctx context.Context, orderID int64) {
	if s.dashboards == nil {
		return
	}
	sellerIDs, err := s.orderRepo.SellerIDs(ctx, orderID)
	if err != nil {
		s.logger.Warn("failed to resolve order sellers for cache invalidation",
			zap.Int64("order_id", orderID),
			zap.Error(err))
		return
	}
	for _, sellerID := range sellerIDs {
		s.dashboards.Invalidate(ctx, sellerID)
	}
}
