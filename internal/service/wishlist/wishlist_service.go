// internal/service/wishlist/wishlist_service.go
package wishlist

import (
	"context"

	"go.uber.org/zap"

	"softmarket-service/internal/domain/wishlist"
	"softmarket-service/internal/repository/postgres"
)

type Service struct {
	wishlistRepo *postgres.WishlistRepository
	softwareRepo *postgres.SoftwareRepository
	logger       *zap.Logger
}

func NewService(wishlistRepo *postgres.WishlistRepository, softwareRepo *postgres.SoftwareRepository, logger *zap.Logger) *Service {
	return &Service{wishlistRepo: wishlistRepo, softwareRepo: softwareRepo, logger: logger}
}

// Toggle adds the product to the wishlist when absent and removes it when
// present.
func (s *Service) Toggle(ctx context.Context, userID, softwareID int64) (*wishlist.ToggleResult, error) {
	if _, err := s.softwareRepo.FindByID(ctx, softwareID); err != nil {
		return nil, err
	}

	exists, err := s.wishlistRepo.Exists(ctx, userID, softwareID)
	if err != nil {
		return nil, err
	}

	if exists {
		if err := s.wishlistRepo.Remove(ctx, userID, softwareID); err != nil {
			return nil, err
		}
		return &wishlist.ToggleResult{Toggled: false}, nil
	}

	entry := &wishlist.Entry{UserID: userID, SoftwareID: softwareID}
	if err := s.wishlistRepo.Add(ctx, entry); err != nil {
		return nil, err
	}
	return &wishlist.ToggleResult{Toggled: true, Entry: entry}, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]wishlist.Entry, error) {
	return s.wishlistRepo.ListByUser(ctx, userID)
}
