// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"softmarket-service/internal/config"
	"softmarket-service/internal/db"
	authHandler "softmarket-service/internal/handlers/auth"
	cartHandler "softmarket-service/internal/handlers/cart"
	dashboardHandler "softmarket-service/internal/handlers/dashboard"
	licenseHandler "softmarket-service/internal/handlers/license"
	notifyHandler "softmarket-service/internal/handlers/notification"
	orderHandler "softmarket-service/internal/handlers/order"
	paymentHandler "softmarket-service/internal/handlers/payment"
	planHandler "softmarket-service/internal/handlers/plan"
	productHandler "softmarket-service/internal/handlers/product"
	wishlistHandler "softmarket-service/internal/handlers/wishlist"
	"softmarket-service/internal/middleware"
	"softmarket-service/internal/pkg/jwt"
	"softmarket-service/internal/queue"
	"softmarket-service/internal/repository/postgres"
	analyticsUsecase "softmarket-service/internal/service/analytics"
	authUsecase "softmarket-service/internal/service/auth"
	cartUsecase "softmarket-service/internal/service/cart"
	catalogUsecase "softmarket-service/internal/service/catalog"
	licenseUsecase "softmarket-service/internal/service/license"
	notifyUsecase "softmarket-service/internal/service/notification"
	orderUsecase "softmarket-service/internal/service/order"
	pricingUsecase "softmarket-service/internal/service/pricing"
	wishlistUsecase "softmarket-service/internal/service/wishlist"
	"softmarket-service/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	http   *http.Server
}

func NewServer(cfg config.AppConfig, logger *zap.Logger) *Server {
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine, logger: logger}
}

// Start wires the whole API process and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(pool)
	softwareRepo := postgres.NewSoftwareRepository(pool)
	planRepo := postgres.NewSubscriptionPlanRepository(pool)
	subRepo := postgres.NewSoftwareSubscriptionRepository(pool)
	historyRepo := postgres.NewPriceHistoryRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	licenseRepo := postgres.NewLicenseRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	cartRepo := postgres.NewCartRepository(pool)
	wishlistRepo := postgres.NewWishlistRepository(pool)
	notifyRepo := postgres.NewNotificationRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)

	// ----- Notification queue (producer side) -----
	notifyQueue := queue.New(redisClient, "notifications", queue.DefaultOptions())

	// ----- Services -----
	authService := authUsecase.NewService(userRepo, jwtManager, s.logger)
	catalogService := catalogUsecase.NewService(dbWrapper, softwareRepo, subRepo, planRepo, s.logger)
	pricingService := pricingUsecase.NewService(dbWrapper, softwareRepo, subRepo, historyRepo, notifyQueue, s.logger)
	analyticsService := analyticsUsecase.NewService(dashboardRepo, redisClient, s.cfg.DashboardCacheTTL, s.logger)
	orderService := orderUsecase.NewService(dbWrapper, orderRepo, subRepo, licenseRepo, paymentRepo, cartRepo, notifyQueue, analyticsService, s.logger)
	licenseService := licenseUsecase.NewService(licenseRepo, s.logger)
	cartService := cartUsecase.NewService(cartRepo, subRepo, s.logger)
	wishlistService := wishlistUsecase.NewService(wishlistRepo, softwareRepo, s.logger)
	notifyService := notifyUsecase.NewService(wishlistRepo, notifyRepo, nil, s.logger)

	// ----- WebSocket hub and its redis bridge -----
	hub := ws.NewHub(s.logger)
	go hub.Run(ctx)

	bridge := ws.NewBridge(redisClient, hub, s.logger)
	go bridge.Run(ctx)

	// ----- Middleware and handlers -----
	authMW := middleware.NewAuthMiddleware(authService, jwtManager)

	handlers := &Handlers{
		AuthHandler:      authHandler.NewAuthHandler(authService),
		ProductHandler:   productHandler.NewProductHandler(catalogService, pricingService),
		PlanHandler:      planHandler.NewPlanHandler(catalogService),
		OrderHandler:     orderHandler.NewOrderHandler(orderService),
		PaymentHandler:   paymentHandler.NewPaymentHandler(orderService),
		LicenseHandler:   licenseHandler.NewLicenseHandler(licenseService),
		CartHandler:      cartHandler.NewCartHandler(cartService),
		WishlistHandler:  wishlistHandler.NewWishlistHandler(wishlistService),
		NotifHandler:     notifyHandler.NewNotificationHandler(notifyService),
		DashboardHandler: dashboardHandler.NewDashboardHandler(analyticsService),
		Hub:              hub,
		AuthMiddleware:   authMW,
	}

	s.engine.Use(middleware.RecoveryMiddleware(s.logger))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.CORSMiddleware())

	SetupRouter(s.engine, handlers)

	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.HTTPAddr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
