// internal/service/pricing/pricing_service.go
package pricing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/catalog"
	"softmarket-service/internal/domain/notification"
	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
)

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// SoftwareStore reads and patches product listings.
type SoftwareStore interface {
	FindByID(ctx context.Context, id int64) (*catalog.Software, error)
	FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*catalog.Software, error)
	UpdatePatchWithTx(ctx context.Context, tx pgx.Tx, id int64, patch *catalog.ProductPatch) error
}

// SubscriptionStore mutates the priced plan options of a product.
type SubscriptionStore interface {
	LowestActivePriceWithTx(ctx context.Context, tx pgx.Tx, softwareID int64) (*catalog.SoftwareSubscription, error)
	RepriceAllWithTx(ctx context.Context, tx pgx.Tx, softwareID int64, discount float64) error
	CancelActiveWithTx(ctx context.Context, tx pgx.Tx, softwareID int64) error
	UpsertWithTx(ctx context.Context, tx pgx.Tx, s *catalog.SoftwareSubscription) error
}

// HistoryStore records lowest-price decreases.
type HistoryStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, h *catalog.PriceHistory) error
	ListBySoftware(ctx context.Context, softwareID int64) ([]catalog.PriceHistory, error)
}

// Enqueuer hands a job to the notification dispatch queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload interface{}) error
}

// Service owns discount application and price re-derivation. All price
// mutations for a product happen inside a single transaction so readers
// never observe a partially repriced product.
type Service struct {
	db           TxRunner
	softwareRepo SoftwareStore
	subRepo      SubscriptionStore
	historyRepo  HistoryStore
	queue        Enqueuer
	logger       *zap.Logger
}

func NewService(
	db TxRunner,
	softwareRepo SoftwareStore,
	subRepo SubscriptionStore,
	historyRepo HistoryStore,
	q Enqueuer,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:           db,
		softwareRepo: softwareRepo,
		subRepo:      subRepo,
		historyRepo:  historyRepo,
		queue:        q,
		logger:       logger,
	}
}

// ApplyDiscount partially updates a product, re-derives every subscription
// price when the discount changes, replaces the option set when one is
// supplied, and records a price history row when the lowest active price
// decreased. The price-drop notification job is enqueued only after the
// transaction has committed.
func (s *Service) ApplyDiscount(ctx context.Context, p user.Principal, softwareID int64, patch *catalog.ProductPatch) (*catalog.Software, error) {
	if patch.Discount != nil && !ValidDiscount(*patch.Discount) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "discount must be between 0 and 100")
	}

	var (
		updated *catalog.Software
		dropJob *notification.PriceDropPayload
	)

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		software, err := s.softwareRepo.FindByIDForUpdate(ctx, tx, softwareID)
		if err != nil {
			return err
		}
		if !p.IsAdmin() && software.SellerID != p.SellerID {
			return xerrors.Wrap(xerrors.ErrForbidden, "product belongs to another seller")
		}

		before, err := s.subRepo.LowestActivePriceWithTx(ctx, tx, softwareID)
		if err != nil {
			return err
		}

		if err := s.softwareRepo.UpdatePatchWithTx(ctx, tx, softwareID, patch); err != nil {
			return err
		}

		discount := software.Discount
		if patch.Discount != nil {
			discount = *patch.Discount
			if err := s.subRepo.RepriceAllWithTx(ctx, tx, softwareID, discount); err != nil {
				return err
			}
		}

		if patch.SubscriptionOptions != nil {
			if err := s.subRepo.CancelActiveWithTx(ctx, tx, softwareID); err != nil {
				return err
			}
			for _, opt := range patch.SubscriptionOptions {
				sub := &catalog.SoftwareSubscription{
					SoftwareID:         softwareID,
					SubscriptionPlanID: opt.SubscriptionPlanID,
					BasePrice:          opt.Price,
					Price:              DerivePrice(opt.Price, discount),
					Status:             catalog.SubscriptionActive,
				}
				if err := s.subRepo.UpsertWithTx(ctx, tx, sub); err != nil {
					return fmt.Errorf("failed to upsert subscription option for plan %d: %w", opt.SubscriptionPlanID, err)
				}
			}
		}

		after, err := s.subRepo.LowestActivePriceWithTx(ctx, tx, softwareID)
		if err != nil {
			return err
		}

		if before != nil && after != nil && after.Price < before.Price {
			if err := s.historyRepo.CreateWithTx(ctx, tx, &catalog.PriceHistory{
				SoftwareID: softwareID,
				OldPrice:   before.Price,
				NewPrice:   after.Price,
			}); err != nil {
				return err
			}
			name := software.Name
			if patch.Name != nil {
				name = *patch.Name
			}
			dropJob = &notification.PriceDropPayload{
				ProductID:            softwareID,
				ProductName:          name,
				OldPrice:             before.Price,
				NewPrice:             after.Price,
				SubscriptionPlanName: after.PlanName,
			}
		}

		updated, err = s.softwareRepo.FindByIDForUpdate(ctx, tx, softwareID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if dropJob != nil {
		if err := s.queue.Enqueue(ctx, string(notification.TypePriceDrop), dropJob); err != nil {
			// The price change is already committed; a lost notification
			// is tolerable, a rolled back price change is not.
			s.logger.Error("failed to enqueue price drop job",
				zap.Int64("software_id", softwareID),
				zap.Error(err))
		} else {
			s.logger.Info("price drop detected",
				zap.Int64("software_id", softwareID),
				zap.Float64("old_price", dropJob.OldPrice),
				zap.Float64("new_price", dropJob.NewPrice))
		}
	}

	return updated, nil
}

// PriceHistory returns the recorded lowest-price decreases for a product.
func (s *Service) PriceHistory(ctx context.Context, softwareID int64) ([]catalog.PriceHistory, error) {
	if _, err := s.softwareRepo.FindByID(ctx, softwareID); err != nil {
		return nil, err
	}
	return s.historyRepo.ListBySoftware(ctx, softwareID)
}
