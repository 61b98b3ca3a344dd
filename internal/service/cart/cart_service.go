// internal/service/cart/cart_service.go
package cart

import (
	"context"

	"go.uber.org/zap"

	"softmarket-service/internal/domain/cart"
	xerrors "softmarket-service/internal/pkg/errors"
	"softmarket-service/internal/repository/postgres"
)

type Service struct {
	cartRepo *postgres.CartRepository
	subRepo  *postgres.SoftwareSubscriptionRepository
	logger   *zap.Logger
}

func NewService(cartRepo *postgres.CartRepository, subRepo *postgres.SoftwareSubscriptionRepository, logger *zap.Logger) *Service {
	return &Service{cartRepo: cartRepo, subRepo: subRepo, logger: logger}
}

// AddItem puts a subscription plan in the user's cart. Adding the same
// plan twice is a conflict, not a quantity bump.
func (s *Service) AddItem(ctx context.Context, userID int64, req *cart.AddItemRequest) (*cart.Item, error) {
	subs, err := s.subRepo.FindByIDs(ctx, []int64{req.SubscriptionID})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, xerrors.Wrap(xerrors.ErrNotFound, "subscription not found or inactive")
	}

	item := &cart.Item{UserID: userID, SubscriptionID: req.SubscriptionID}
	if err := s.cartRepo.Add(ctx, item); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, xerrors.Wrap(xerrors.ErrConflict, "item already in cart")
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]cart.Item, error) {
	return s.cartRepo.ListByUser(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, subscriptionID int64) error {
	return s.cartRepo.Remove(ctx, userID, subscriptionID)
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.cartRepo.Clear(ctx, userID)
}
