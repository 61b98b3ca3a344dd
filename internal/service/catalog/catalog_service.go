// internal/service/catalog/catalog_service.go
package catalog

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/catalog"
	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
	"softmarket-service/internal/service/pricing"
)

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// SoftwareStore persists product listings.
type SoftwareStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, s *catalog.Software) error
	FindByID(ctx context.Context, id int64) (*catalog.Software, error)
	List(ctx context.Context, filters *catalog.ProductListFilters) ([]catalog.Software, error)
	UpdateStatus(ctx context.Context, id int64, status catalog.SoftwareStatus) error
}

// SubscriptionStore persists the priced plan options of a product.
type SubscriptionStore interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, s *catalog.SoftwareSubscription) error
	ListBySoftware(ctx context.Context, softwareID int64) ([]catalog.SoftwareSubscription, error)
}

// PlanStore persists the plan templates products price against.
type PlanStore interface {
	Create(ctx context.Context, p *catalog.SubscriptionPlan) error
	FindByID(ctx context.Context, id int64) (*catalog.SubscriptionPlan, error)
	List(ctx context.Context) ([]catalog.SubscriptionPlan, error)
	Update(ctx context.Context, id int64, req *catalog.UpdatePlanRequest) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	db           TxRunner
	softwareRepo SoftwareStore
	subRepo      SubscriptionStore
	planRepo     PlanStore
	logger       *zap.Logger
}

func NewService(
	db TxRunner,
	softwareRepo SoftwareStore,
	subRepo SubscriptionStore,
	planRepo PlanStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		db:           db,
		softwareRepo: softwareRepo,
		subRepo:      subRepo,
		planRepo:     planRepo,
		logger:       logger,
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateProduct registers a new listing for the caller's seller profile.
// New products start in pending status until an admin activates them.
// The listing and its subscription options land in one transaction; a
// rejected option leaves no orphaned product row behind.
func (s *Service) CreateProduct(ctx context.Context, p user.Principal, req *catalog.CreateProductRequest) (*catalog.Software, error) {
	if !p.IsSeller() && !p.IsAdmin() {
		return nil, xerrors.Wrap(xerrors.ErrForbidden, "only sellers can create products")
	}
	if !pricing.ValidDiscount(req.Discount) {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "discount must be between 0 and 100")
	}

	software := &catalog.Software{
		Name:         req.Name,
		Description:  nullString(req.Description),
		Features:     nullString(req.Features),
		Requirements: nullString(req.Requirements),
		Discount:     req.Discount,
		Status:       catalog.SoftwarePending,
		SellerID:     p.SellerID,
	}
	if req.CategoryID != nil {
		software.CategoryID = sql.NullInt64{Int64: *req.CategoryID, Valid: true}
	}

	err := s.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.softwareRepo.CreateWithTx(ctx, tx, software); err != nil {
			return err
		}
		for _, opt := range req.SubscriptionOptions {
			sub := &catalog.SoftwareSubscription{
				SoftwareID:         software.ID,
				SubscriptionPlanID: opt.SubscriptionPlanID,
				BasePrice:          opt.Price,
				Price:              pricing.DerivePrice(opt.Price, req.Discount),
				Status:             catalog.SubscriptionActive,
			}
			if err := s.subRepo.CreateWithTx(ctx, tx, sub); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.Int64("software_id", software.ID),
		zap.Int64("seller_id", p.SellerID))
	return software, nil
}

// GetProduct returns a product with its active subscription options.
func (s *Service) GetProduct(ctx context.Context, id int64) (*catalog.Software, []catalog.SoftwareSubscription, error) {
	software, err := s.softwareRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	subs, err := s.subRepo.ListBySoftware(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return software, subs, nil
}

func (s *Service) ListProducts(ctx context.Context, filters *catalog.ProductListFilters) ([]catalog.Software, error) {
	return s.softwareRepo.List(ctx, filters)
}

// UpdateProductStatus is the admin moderation switch.
func (s *Service) UpdateProductStatus(ctx context.Context, id int64, status catalog.SoftwareStatus) error {
	switch status {
	case catalog.SoftwarePending, catalog.SoftwareActive, catalog.SoftwareInactive:
	default:
		return xerrors.Wrap(xerrors.ErrInvalidInput, "unknown product status")
	}
	return s.softwareRepo.UpdateStatus(ctx, id, status)
}

func (s *Service) CreatePlan(ctx context.Context, req *catalog.CreatePlanRequest) (*catalog.SubscriptionPlan, error) {
	plan := &catalog.SubscriptionPlan{Name: req.Name, Duration: req.Duration}
	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Service) GetPlan(ctx context.Context, id int64) (*catalog.SubscriptionPlan, error) {
	return s.planRepo.FindByID(ctx, id)
}

func (s *Service) ListPlans(ctx context.Context) ([]catalog.SubscriptionPlan, error) {
	return s.planRepo.List(ctx)
}

func (s *Service) UpdatePlan(ctx context.Context, id int64, req *catalog.UpdatePlanRequest) error {
	if req.Name == nil && req.Duration == nil {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "nothing to update")
	}
	return s.planRepo.Update(ctx, id, req)
}

func (s *Service) DeletePlan(ctx context.Context, id int64) error {
	return s.planRepo.Delete(ctx, id)
}
