// internal/service/license/license_service.go
package license

import (
	"context"
	"time"

	"go.uber.org/zap"

	"softmarket-service/internal/domain/license"
	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
)

// Store persists license keys and their lifecycle flags.
type Store interface {
	FindByKeyAndUser(ctx context.Context, key string, userID int64) (*license.LicenseKey, error)
	FindByIDAndUser(ctx context.Context, id, userID int64) (*license.LicenseKey, error)
	ListByUser(ctx context.Context, userID int64) ([]license.LicenseKey, error)
	Activate(ctx context.Context, id int64) error
	Deactivate(ctx context.Context, id int64) error
	Renew(ctx context.Context, id int64, newValidUntil time.Time) error
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// Service owns the license lifecycle after fulfillment has issued the
// keys: validation, activation, deactivation, renewal and the periodic
// expiry sweep.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// NextValidUntil extends the current expiry by the plan duration. Renewal
// always stacks on the remaining time rather than restarting from now.
func NextValidUntil(current time.Time, months int) time.Time {
	return current.AddDate(0, months, 0)
}

// Validate checks a key without mutating it. An unknown key and a key
// belonging to another user both surface as not found; the false verdict
// is reserved for keys that exist but are inactive or expired.
func (s *Service) Validate(ctx context.Context, p user.Principal, key string) (*license.ValidationResult, error) {
	l, err := s.store.FindByKeyAndUser(ctx, key, p.UserID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.Wrap(xerrors.ErrNotFound, "invalid license key")
		}
		return nil, err
	}

	if !l.Valid(s.now()) {
		return &license.ValidationResult{IsValid: false}, nil
	}
	return &license.ValidationResult{
		IsValid:      true,
		LicenseID:    l.ID,
		SoftwareName: l.SoftwareName,
		ValidUntil:   l.ValidUntil,
	}, nil
}

// Activate redeems a key. Activating an already redeemed key is not an
// error; the result flags it so clients can tell first redemption apart.
// Expiry does not gate redemption; an expired key activates and stays
// unusable until renewed.
func (s *Service) Activate(ctx context.Context, p user.Principal, key string) (*license.ActivationResult, error) {
	l, err := s.store.FindByKeyAndUser(ctx, key, p.UserID)
	if err != nil {
		return nil, err
	}

	if l.RedeemedAt.Valid {
		return &license.ActivationResult{License: l, AlreadyActivated: true}, nil
	}

	if err := s.store.Activate(ctx, l.ID); err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			// Lost the race against a concurrent activation of the same key.
			l, err = s.store.FindByKeyAndUser(ctx, key, p.UserID)
			if err != nil {
				return nil, err
			}
			return &license.ActivationResult{License: l, AlreadyActivated: true}, nil
		}
		return nil, err
	}

	l, err = s.store.FindByKeyAndUser(ctx, key, p.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("license activated",
		zap.Int64("license_id", l.ID),
		zap.Int64("user_id", p.UserID))
	return &license.ActivationResult{License: l, AlreadyActivated: false}, nil
}

// Deactivate releases a license so it can be redeemed again elsewhere.
func (s *Service) Deactivate(ctx context.Context, p user.Principal, id int64) error {
	if _, err := s.store.FindByIDAndUser(ctx, id, p.UserID); err != nil {
		return err
	}
	return s.store.Deactivate(ctx, id)
}

// Renew extends a license by its plan duration, measured from the old
// expiry rather than from now, and clears the expired flag.
func (s *Service) Renew(ctx context.Context, p user.Principal, id int64) (*license.LicenseKey, error) {
	l, err := s.store.FindByIDAndUser(ctx, id, p.UserID)
	if err != nil {
		return nil, err
	}
	if l.PlanDuration <= 0 {
		return nil, xerrors.Wrap(xerrors.ErrInternal, "license has no plan duration")
	}

	next := NextValidUntil(l.ValidUntil, l.PlanDuration)
	if err := s.store.Renew(ctx, l.ID, next); err != nil {
		return nil, err
	}

	l, err = s.store.FindByIDAndUser(ctx, id, p.UserID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("license renewed",
		zap.Int64("license_id", l.ID),
		zap.Time("valid_until", l.ValidUntil))
	return l, nil
}

func (s *Service) GetByID(ctx context.Context, p user.Principal, id int64) (*license.LicenseKey, error) {
	return s.store.FindByIDAndUser(ctx, id, p.UserID)
}

func (s *Service) ListByUser(ctx context.Context, p user.Principal) ([]license.LicenseKey, error) {
	return s.store.ListByUser(ctx, p.UserID)
}

// SweepExpired reconciles the expired flag of overdue licenses. It is
// idempotent and safe to run on any schedule.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.store.MarkExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired licenses swept", zap.Int64("count", n))
	}
	return n, nil
}
