package main

import (
	"context"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"softmarket-service/internal/config"
	"softmarket-service/internal/db"
	"softmarket-service/internal/domain/notification"
	"softmarket-service/internal/queue"
	"softmarket-service/internal/repository/postgres"
	licenseUsecase "softmarket-service/internal/service/license"
	notifyUsecase "softmarket-service/internal/service/notification"
	"softmarket-service/internal/workers"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// The worker process owns everything asynchronous: the notification
// dispatch queue, the license expiry sweep and read-notification cleanup.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	wishlistRepo := postgres.NewWishlistRepository(pool)
	notifyRepo := postgres.NewNotificationRepository(pool)
	licenseRepo := postgres.NewLicenseRepository(pool)

	publisher := notifyUsecase.NewRedisPublisher(redisClient)
	notifyService := notifyUsecase.NewService(wishlistRepo, notifyRepo, publisher, logger)
	licenseService := licenseUsecase.NewService(licenseRepo, logger)

	notifyQueue := queue.New(redisClient, "notifications", queue.DefaultOptions())
	worker := queue.NewWorker(notifyQueue, cfg.QueueConcurrency, logger)
	worker.Register(string(notification.TypePriceDrop), notifyService.HandlePriceDrop)
	worker.Register(string(notification.TypeOrderCompleted), notifyService.HandleOrderCompleted)

	sweeper := workers.NewLicenseSweeper(licenseService, cfg.LicenseSweepInterval, logger)
	cleaner := workers.NewNotificationCleaner(notifyService, cfg.CleanupInterval, cfg.NotificationRetention, logger)

	logger.Info("worker starting",
		zap.Int("queue_concurrency", cfg.QueueConcurrency),
		zap.Duration("license_sweep_interval", cfg.LicenseSweepInterval))

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); worker.Run(ctx) }()
	go func() { defer wg.Done(); sweeper.Run(ctx) }()
	go func() { defer wg.Done(); cleaner.Run(ctx) }()
	wg.Wait()

	logger.Info("worker stopped gracefully")
}
