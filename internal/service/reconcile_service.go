package service

import (
	"context"
	"fmt"
	"time"

	"loyalty-rewards/internal/models"
	"loyalty-rewards/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UnawardedLister finds approved receipts missing their ledger entry.
type UnawardedLister interface {
	ListUnawarded(ctx context.Context, limit int) ([]*models.Receipt, error)
}

// ReconcileService repairs award inconsistencies: a receipt can end up
// approved with no points credited when the award call fails after a
// successful insert. The award is idempotent per receipt, so re-driving it
// here is safe even if the original call half-succeeded.
type ReconcileService struct {
	receipts UnawardedLister
	points   PointsStore
	scoring  config.ScoringConfig
	limit    int
	logger   *zap.Logger
}

func NewReconcileService(
	receipts UnawardedLister,
	points PointsStore,
	scoring config.ScoringConfig,
	limit int,
	logger *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		receipts: receipts,
		points:   points,
		scoring:  scoring,
		limit:    limit,
		logger:   logger,
	}
}

// Run performs one reconciliation pass.
func (s *ReconcileService) Run(ctx context.Context) error {
	receipts, err := s.receipts.ListUnawarded(ctx, s.limit)
	if err != nil {
		return fmt.Errorf("failed to list unawarded receipts: %w", err)
	}

	if len(receipts) == 0 {
		return nil
	}

	s.logger.Warn("Found approved receipts without points, re-driving awards",
		zap.Int("count", len(receipts)),
	)

	var repaired int
	for _, receipt := range receipts {
		points := PointsFor(s.scoring, receipt.TotalCents, receipt.Category)
		entry := &models.PointsEntry{
			ID:          uuid.New(),
			ReceiptID:   receipt.ID,
			UserID:      receipt.UserID,
			Points:      points,
			Description: fmt.Sprintf("Receipt from %s", receipt.RetailerName),
			CreatedAt:   time.Now(),
		}

		if err := s.points.Award(ctx, entry); err != nil {
			s.logger.Error("Reconciliation award failed",
				zap.String("receipt_id", receipt.ID.String()),
				zap.Error(err),
			)
			continue
		}

		repaired++
		s.logger.Info("Re-drove points award",
			zap.String("receipt_id", receipt.ID.String()),
			zap.Int64("points", points),
		)
	}

	s.logger.Info("Reconciliation pass completed",
		zap.Int("repaired", repaired),
		zap.Int("remaining_failures", len(receipts)-repaired),
	)

	return nil
}
