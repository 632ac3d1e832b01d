package service

import (
	"context"
	"time"

	"loyalty-rewards/internal/dto"
	"loyalty-rewards/internal/repository"

	"go.uber.org/zap"
)

type PromotionService struct {
	promoRepo *repository.PromotionRepository
	logger    *zap.Logger
}

func NewPromotionService(promoRepo *repository.PromotionRepository, logger *zap.Logger) *PromotionService {
	return &PromotionService{
		promoRepo: promoRepo,
		logger:    logger,
	}
}

func (s *PromotionService) ListActive(ctx context.Context) ([]*dto.PromotionResponse, error) {
	promotions, err := s.promoRepo.ListActive(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PromotionResponse, len(promotions))
	for i, promo := range promotions {
		responses[i] = &dto.PromotionResponse{
			ID:          promo.ID.String(),
			Title:       promo.Title,
			Description: promo.Description,
			ImageURL:    promo.ImageURL,
			StartsAt:    promo.StartsAt.Format(time.RFC3339),
			EndsAt:      promo.EndsAt.Format(time.RFC3339),
		}
	}

	return responses, nil
}
