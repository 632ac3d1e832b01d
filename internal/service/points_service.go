package service

import (
	"context"
	"time"

	"loyalty-rewards/internal/dto"
	"loyalty-rewards/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PointsService struct {
	pointsRepo *repository.PointsRepository
	logger     *zap.Logger
}

func NewPointsService(pointsRepo *repository.PointsRepository, logger *zap.Logger) *PointsService {
	return &PointsService{
		pointsRepo: pointsRepo,
		logger:     logger,
	}
}

func (s *PointsService) Balance(ctx context.Context, userID uuid.UUID) (*dto.BalanceResponse, error) {
	balance, err := s.pointsRepo.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.BalanceResponse{Balance: balance}, nil
}

func (s *PointsService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.PointsEntryResponse, error) {
	entries, err := s.pointsRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PointsEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = &dto.PointsEntryResponse{
			ID:          entry.ID.String(),
			ReceiptID:   entry.ReceiptID.String(),
			Points:      entry.Points,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt.Format(time.RFC3339),
		}
	}

	return responses, nil
}
