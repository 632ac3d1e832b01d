package service

import (
	"context"
	"errors"
	"testing"

	"loyalty-rewards/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUnawardedLister struct {
	receipts []*models.Receipt
	err      error
}

func (f *fakeUnawardedLister) ListUnawarded(ctx context.Context, limit int) ([]*models.Receipt, error) {
	return f.receipts, f.err
}

func TestReconcileRedrivesMissingAwards(t *testing.T) {
	fuel := &models.Receipt{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		RetailerName: "PSO Petrol",
		Category:     models.CategoryFuel,
		TotalCents:   5000,
		Status:       models.StatusApproved,
	}
	grocery := &models.Receipt{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		RetailerName: "Imtiaz",
		Category:     models.CategoryGrocery,
		TotalCents:   8945,
		Status:       models.StatusApproved,
	}

	points := &fakePointsStore{}
	svc := NewReconcileService(&fakeUnawardedLister{receipts: []*models.Receipt{fuel, grocery}}, points, defaultScoring(), 100, zap.NewNop())

	require.NoError(t, svc.Run(context.Background()))

	require.Len(t, points.awards, 2)
	assert.Equal(t, fuel.ID, points.awards[0].ReceiptID)
	assert.Equal(t, int64(75), points.awards[0].Points)
	assert.Equal(t, grocery.ID, points.awards[1].ReceiptID)
	assert.Equal(t, int64(89), points.awards[1].Points)
}

func TestReconcileNothingToRepair(t *testing.T) {
	points := &fakePointsStore{}
	svc := NewReconcileService(&fakeUnawardedLister{}, points, defaultScoring(), 100, zap.NewNop())

	require.NoError(t, svc.Run(context.Background()))
	assert.Empty(t, points.awards)
}

func TestReconcileKeepsGoingAfterAwardFailure(t *testing.T) {
	receipts := []*models.Receipt{
		{ID: uuid.New(), UserID: uuid.New(), RetailerName: "A", Category: models.CategoryOther, TotalCents: 1000},
		{ID: uuid.New(), UserID: uuid.New(), RetailerName: "B", Category: models.CategoryOther, TotalCents: 2000},
	}

	points := &fakePointsStore{err: errors.New("ledger unavailable")}
	svc := NewReconcileService(&fakeUnawardedLister{receipts: receipts}, points, defaultScoring(), 100, zap.NewNop())

	assert.NoError(t, svc.Run(context.Background()), "per-receipt failures are logged, not surfaced")
}

func TestReconcileListFailureSurfaces(t *testing.T) {
	svc := NewReconcileService(&fakeUnawardedLister{err: errors.New("db down")}, &fakePointsStore{}, defaultScoring(), 100, zap.NewNop())

	assert.Error(t, svc.Run(context.Background()))
}
