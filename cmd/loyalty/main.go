package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"loyalty-rewards/internal/api"
	"loyalty-rewards/internal/api/handlers"
	"loyalty-rewards/internal/repository"
	"loyalty-rewards/internal/service"
	"loyalty-rewards/pkg/auth"
	"loyalty-rewards/pkg/config"
	"loyalty-rewards/pkg/logger"
	"loyalty-rewards/pkg/postgres"
	"loyalty-rewards/pkg/storage"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// @title Loyalty Rewards API
// @version 1.0
// @description Receipt-scanning loyalty rewards service: upload receipts, earn points, browse promotions

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting loyalty rewards service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize object storage
	objectStorage, err := storage.NewS3Storage(ctx, &cfg.Storage, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	receiptRepo := repository.NewReceiptRepository(db, appLogger)
	pointsRepo := repository.NewPointsRepository(db, appLogger)
	promoRepo := repository.NewPromotionRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	ocrService := service.NewOCRService(&cfg.OCR, appLogger)
	receiptService := service.NewReceiptService(
		receiptRepo, pointsRepo, objectStorage, ocrService,
		cfg.Scoring, cfg.Storage.PresignTTL, appLogger,
	)
	pointsService := service.NewPointsService(pointsRepo, appLogger)
	promoService := service.NewPromotionService(promoRepo, appLogger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	receiptHandler := handlers.NewReceiptHandler(receiptService, objectStorage, appLogger)
	pointsHandler := handlers.NewPointsHandler(pointsService, appLogger)
	promoHandler := handlers.NewPromotionHandler(promoService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, receiptHandler, pointsHandler, promoHandler, jwtManager, appLogger)

	// Start the award reconciler
	var scheduler *cron.Cron
	if cfg.Reconciler.Enabled {
		reconciler := service.NewReconcileService(
			receiptRepo, pointsRepo, cfg.Scoring, cfg.Reconciler.BatchLimit, appLogger,
		)
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.Reconciler.Schedule, func() {
			if err := reconciler.Run(context.Background()); err != nil {
				appLogger.Error("Reconciliation pass failed", zap.Error(err))
			}
		}); err != nil {
			appLogger.Fatal("Failed to schedule reconciler", zap.Error(err))
		}
		scheduler.Start()
		appLogger.Info("Award reconciler scheduled", zap.String("schedule", cfg.Reconciler.Schedule))
	}

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if scheduler != nil {
		scheduler.Stop()
	}
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
