// internal/workers/sweeper.go
package workers

import (
	"context"
	"time"

	"go.uber.org/zap"

	licensesvc "softmarket-service/internal/service/license"
	notifsvc "softmarket-service/internal/service/notification"
)

// LicenseSweeper periodically reconciles the expired flag of overdue
// licenses.
type LicenseSweeper struct {
	licenseService *licensesvc.Service
	interval       time.Duration
	logger         *zap.Logger
}

func NewLicenseSweeper(licenseService *licensesvc.Service, interval time.Duration, logger *zap.Logger) *LicenseSweeper {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &LicenseSweeper{licenseService: licenseService, interval: interval, logger: logger}
}

// Run sweeps once immediately and then on every tick until ctx is
// cancelled.
func (s *LicenseSweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *LicenseSweeper) sweep(ctx context.Context) {
	if _, err := s.licenseService.SweepExpired(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("license sweep failed", zap.Error(err))
	}
}

// NotificationCleaner periodically deletes read notifications older than
// the retention window.
type NotificationCleaner struct {
	notificationService *notifsvc.Service
	interval            time.Duration
	retention           time.Duration
	logger              *zap.Logger
}

func NewNotificationCleaner(notificationService *notifsvc.Service, interval, retention time.Duration, logger *zap.Logger) *NotificationCleaner {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &NotificationCleaner{
		notificationService: notificationService,
		interval:            interval,
		retention:           retention,
		logger:              logger,
	}
}

func (s *NotificationCleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.notificationService.CleanupRead(ctx, s.retention); err != nil && ctx.Err() == nil {
				s.logger.Error("notification cleanup failed", zap.Error(err))
			}
		}
	}
}
