package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"loyalty-rewards/internal/models"
	"loyalty-rewards/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStorage struct {
	url string
	err error
}

func (f *fakeStorage) PresignGetURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return f.url, f.err
}

type fakeExtractor struct {
	result *ExtractedReceipt
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, imageURL string) (*ExtractedReceipt, error) {
	return f.result, f.err
}

func (f *fakeExtractor) Provider() string { return "gemini/test" }

// fakeReceiptStore enforces fingerprint uniqueness the way the database
// constraint does, so duplicate submissions exercise the real error path.
type fakeReceiptStore struct {
	created      []*models.Receipt
	fingerprints map[string]bool
	err          error
}

func newFakeReceiptStore() *fakeReceiptStore {
	return &fakeReceiptStore{fingerprints: map[string]bool{}}
}

func (f *fakeReceiptStore) Create(ctx context.Context, receipt *models.Receipt) error {
	if f.err != nil {
		return f.err
	}
	if f.fingerprints[receipt.Fingerprint] {
		return repository.ErrDuplicateReceipt
	}
	f.fingerprints[receipt.Fingerprint] = true
	f.created = append(f.created, receipt)
	return nil
}

func (f *fakeReceiptStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeReceiptStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Receipt, error) {
	var out []*models.Receipt
	for _, r := range f.created {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakePointsStore struct {
	awards []*models.PointsEntry
	err    error
}

func (f *fakePointsStore) Award(ctx context.Context, entry *models.PointsEntry) error {
	if f.err != nil {
		return f.err
	}
	f.awards = append(f.awards, entry)
	return nil
}

func fuelExtraction() *ExtractedReceipt {
	return &ExtractedReceipt{
		RetailerName:  "PSO Petrol",
		Category:      models.CategoryFuel,
		PurchaseDate:  date("2024-03-15"),
		TotalCents:    5000,
		Currency:      "PKR",
		InvoiceNumber: "INV-42",
		Confidence:    0.65,
		Raw:           `{"retailer_name": "PSO Petrol"}`,
	}
}

func newTestReceiptService(
	receipts *fakeReceiptStore,
	points *fakePointsStore,
	storage *fakeStorage,
	extractor *fakeExtractor,
) *ReceiptService {
	return NewReceiptService(
		receipts, points, storage, extractor,
		defaultScoring(), 5*time.Minute, zap.NewNop(),
	)
}

func TestSubmitReceiptFuelOverrideAwardsPoints(t *testing.T) {
	receipts := newFakeReceiptStore()
	points := &fakePointsStore{}
	svc := newTestReceiptService(receipts, points, &fakeStorage{url: "https://signed"}, &fakeExtractor{result: fuelExtraction()})

	userID := uuid.New()
	resp, err := svc.SubmitReceipt(context.Background(), userID, "receipts/a.jpg")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "approved", resp.Status)
	assert.Equal(t, int64(75), resp.PointsAwarded)
	assert.Equal(t, "PSO Petrol", resp.Retailer)
	assert.InDelta(t, 50.00, resp.Total, 1e-9)

	require.Len(t, receipts.created, 1)
	stored := receipts.created[0]
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, models.StatusApproved, stored.Status)
	assert.Equal(t, "gemini/test", stored.OCRProvider)
	assert.NotEmpty(t, stored.Fingerprint)

	require.Len(t, points.awards, 1)
	assert.Equal(t, stored.ID, points.awards[0].ReceiptID)
	assert.Equal(t, int64(75), points.awards[0].Points)
}

func TestSubmitReceiptQueuedAwardsNothing(t *testing.T) {
	extraction := &ExtractedReceipt{
		RetailerName: "Imtiaz",
		Category:     models.CategoryGrocery,
		PurchaseDate: date("2024-03-15"),
		TotalCents:   20000,
		Currency:     "PKR",
		Confidence:   0.45,
	}

	receipts := newFakeReceiptStore()
	points := &fakePointsStore{}
	svc := newTestReceiptService(receipts, points, &fakeStorage{url: "https://signed"}, &fakeExtractor{result: extraction})

	resp, err := svc.SubmitReceipt(context.Background(), uuid.New(), "receipts/b.jpg")
	require.NoError(t, err)

	assert.Equal(t, "queued", resp.Status)
	assert.Zero(t, resp.PointsAwarded)
	assert.Empty(t, points.awards, "queued receipts must not be credited")
	require.Len(t, receipts.created, 1)
	assert.Equal(t, models.StatusQueued, receipts.created[0].Status)
}

func TestSubmitReceiptDuplicateIsNormalOutcome(t *testing.T) {
	receipts := newFakeReceiptStore()
	points := &fakePointsStore{}
	svc := newTestReceiptService(receipts, points, &fakeStorage{url: "https://signed"}, &fakeExtractor{result: fuelExtraction()})

	_, err := svc.SubmitReceipt(context.Background(), uuid.New(), "receipts/a.jpg")
	require.NoError(t, err)

	resp, err := svc.SubmitReceipt(context.Background(), uuid.New(), "receipts/a-again.jpg")
	require.NoError(t, err, "a duplicate is a user-visible outcome, not an error")

	assert.True(t, resp.Success)
	assert.Equal(t, "duplicate", resp.Status)
	assert.Empty(t, resp.ReceiptID)
	assert.Zero(t, resp.PointsAwarded)
	assert.Len(t, receipts.created, 1, "no second row may survive")
	assert.Len(t, points.awards, 1, "no second award may be made")
}

func TestSubmitReceiptExtractionFailureIsFatal(t *testing.T) {
	receipts := newFakeReceiptStore()
	points := &fakePointsStore{}
	svc := newTestReceiptService(receipts, points, &fakeStorage{url: "https://signed"}, &fakeExtractor{err: errors.New("model unavailable")})

	_, err := svc.SubmitReceipt(context.Background(), uuid.New(), "receipts/c.jpg")
	require.Error(t, err)
	assert.Empty(t, receipts.created, "a failure before the insert leaves no trace")
}

func TestSubmitReceiptPresignFailureIsFatal(t *testing.T) {
	svc := newTestReceiptService(newFakeReceiptStore(), &fakePointsStore{}, &fakeStorage{err: errors.New("no such key")}, &fakeExtractor{result: fuelExtraction()})

	_, err := svc.SubmitReceipt(context.Background(), uuid.New(), "receipts/missing.jpg")
	assert.Error(t, err)
}

func TestSubmitReceiptAwardFailureDoesNotSurface(t *testing.T) {
	receipts := newFakeReceiptStore()
	points := &fakePointsStore{err: errors.New("ledger unavailable")}
	svc := newTestReceiptService(receipts, points, &fakeStorage{url: "https://signed"}, &fakeExtractor{result: fuelExtraction()})

	resp, err := svc.SubmitReceipt(context.Background(), uuid.New(), "receipts/d.jpg")
	require.NoError(t, err, "the receipt insert succeeded; the reconciler repairs the ledger")

	assert.Equal(t, "approved", resp.Status)
	assert.Len(t, receipts.created, 1)
}

func TestSubmitReceiptRequiresAuthenticatedUser(t *testing.T) {
	svc := newTestReceiptService(newFakeReceiptStore(), &fakePointsStore{}, &fakeStorage{url: "https://signed"}, &fakeExtractor{result: fuelExtraction()})

	_, err := svc.SubmitReceipt(context.Background(), uuid.Nil, "receipts/e.jpg")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSubmitReceiptMissingDateDefaultsToToday(t *testing.T) {
	extraction := fuelExtraction()
	extraction.PurchaseDate = time.Time{}

	receipts := newFakeReceiptStore()
	svc := newTestReceiptService(receipts, &fakePointsStore{}, &fakeStorage{url: "https://signed"}, &fakeExtractor{result: extraction})

	_, err := svc.SubmitReceipt(context.Background(), uuid.New(), "receipts/f.jpg")
	require.NoError(t, err)

	require.Len(t, receipts.created, 1)
	today := time.Now().UTC().Truncate(24 * time.Hour)
	assert.Equal(t, today, receipts.created[0].PurchaseDate)
}

func TestGetReceiptEnforcesOwnership(t *testing.T) {
	receipts := newFakeReceiptStore()
	svc := newTestReceiptService(receipts, &fakePointsStore{}, &fakeStorage{url: "https://signed"}, &fakeExtractor{result: fuelExtraction()})

	owner := uuid.New()
	resp, err := svc.SubmitReceipt(context.Background(), owner, "receipts/g.jpg")
	require.NoError(t, err)
	receiptID := uuid.MustParse(resp.ReceiptID)

	found, err := svc.GetReceipt(context.Background(), owner, receiptID)
	require.NoError(t, err)
	assert.Equal(t, "PSO Petrol", found.RetailerName)

	_, err = svc.GetReceipt(context.Background(), uuid.New(), receiptID)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}
