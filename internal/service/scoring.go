package service

import (
	"math"

	"loyalty-rewards/internal/models"
	"loyalty-rewards/pkg/config"
)

// Classify maps an extraction confidence onto an approval status. The fuel
// override runs after the general thresholds and can only upgrade queued to
// approved: it never touches an already approved or rejected result, and it
// does not apply below its own threshold.
func Classify(cfg config.ScoringConfig, confidence float64, category models.RetailerCategory) models.ReceiptStatus {
	var status models.ReceiptStatus
	switch {
	case confidence >= cfg.ApproveThreshold:
		status = models.StatusApproved
	case confidence < cfg.RejectThreshold:
		status = models.StatusRejected
	default:
		status = models.StatusQueued
	}

	if status == models.StatusQueued &&
		category == models.CategoryFuel &&
		confidence >= cfg.FuelOverrideThreshold {
		status = models.StatusApproved
	}

	return status
}

// PointsFor computes the award for an approved receipt: one point per major
// currency unit, with the fuel bonus applied and floored on top.
func PointsFor(cfg config.ScoringConfig, totalCents int64, category models.RetailerCategory) int64 {
	base := totalCents / 100
	if category == models.CategoryFuel {
		return int64(math.Floor(float64(base) * cfg.FuelBonusMultiplier))
	}
	return base
}
