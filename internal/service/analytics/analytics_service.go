// internal/service/analytics/analytics_service.go
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"softmarket-service/internal/domain/user"
	xerrors "softmarket-service/internal/pkg/errors"
	"softmarket-service/internal/repository/postgres"
)

// Service serves the seller dashboard with a redis cache in front of the
// aggregate query. Cache failures degrade to the database, never to an
// error.
type Service struct {
	dashboardRepo *postgres.DashboardRepository
	cache         *redis.Client
	ttl           time.Duration
	logger        *zap.Logger
}

func NewService(dashboardRepo *postgres.DashboardRepository, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{dashboardRepo: dashboardRepo, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(sellerID int64) string {
	return fmt.Sprintf("dashboard:seller:%d", sellerID)
}

// SellerDashboard returns the caller's aggregate sales figures.
func (s *Service) SellerDashboard(ctx context.Context, p user.Principal) (*postgres.SellerStats, error) {
	if !p.IsSeller() && !p.IsAdmin() {
		return nil, xerrors.ErrForbidden
	}

	key := cacheKey(p.SellerID)
	if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var stats postgres.SellerStats
		if err := json.Unmarshal(raw, &stats); err == nil {
			return &stats, nil
		}
	} else if err != redis.Nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
	}

	stats, err := s.dashboardRepo.SellerStats(ctx, p.SellerID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate drops a seller's cached dashboard, called after sales events.
func (s *Service) Invalidate(ctx context.Context, sellerID int64) {
	if err := s.cache.Del(ctx, cacheKey(sellerID)).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed",
			zap.Int64("seller_id", sellerID),
			zap.Error(err))
	}
}
