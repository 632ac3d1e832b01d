package main

import (
	"context"
	"log"
	"time"

	"loyalty-rewards/internal/models"
	"loyalty-rewards/internal/repository"
	"loyalty-rewards/pkg/config"
	"loyalty-rewards/pkg/logger"
	"loyalty-rewards/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	promoRepo := repository.NewPromotionRepository(db, appLogger)

	appLogger.Info("Seeding promotions...")

	now := time.Now()
	promotions := []*models.Promotion{
		{
			ID:          uuid.New(),
			Title:       "Fuel Friday",
			Description: "Earn a 50% point bonus on all fuel receipts.",
			StartsAt:    now,
			EndsAt:      now.AddDate(0, 1, 0),
			CreatedAt:   now,
		},
		{
			ID:          uuid.New(),
			Title:       "Grocery Week",
			Description: "Scan any grocery receipt over PKR 1,000 and earn points on the full amount.",
			StartsAt:    now,
			EndsAt:      now.AddDate(0, 0, 14),
			CreatedAt:   now,
		},
		{
			ID:          uuid.New(),
			Title:       "Pharmacy Points",
			Description: "Points on every pharmacy purchase, no minimum spend.",
			StartsAt:    now,
			EndsAt:      now.AddDate(0, 2, 0),
			CreatedAt:   now,
		},
	}

	for _, promo := range promotions {
		if err := promoRepo.Create(ctx, promo); err != nil {
			appLogger.Error("Failed to seed promotion",
				zap.String("title", promo.Title),
				zap.Error(err),
			)
			continue
		}
		appLogger.Info("Seeded promotion", zap.String("title", promo.Title))
	}

	appLogger.Info("Seeding completed")
}
