package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyalty-rewards/internal/dto"
	"loyalty-rewards/internal/models"
	"loyalty-rewards/internal/repository"
	"loyalty-rewards/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrReceiptNotFound = errors.New("receipt not found")
)

// ObjectStorage resolves storage keys to time-limited readable URLs.
type ObjectStorage interface {
	PresignGetURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Extractor reads structured purchase data out of a receipt image.
type Extractor interface {
	Extract(ctx context.Context, imageURL string) (*ExtractedReceipt, error)
	Provider() string
}

// ReceiptStore persists receipt records. Create must enforce the
// fingerprint uniqueness constraint atomically and return
// repository.ErrDuplicateReceipt on conflict.
type ReceiptStore interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Receipt, error)
}

// PointsStore credits the ledger. Award must be idempotent per receipt.
type PointsStore interface {
	Award(ctx context.Context, entry *models.PointsEntry) error
}

type ReceiptService struct {
	receipts   ReceiptStore
	points     PointsStore
	storage    ObjectStorage
	extractor  Extractor
	scoring    config.ScoringConfig
	presignTTL time.Duration
	logger     *zap.Logger
}

func NewReceiptService(
	receipts ReceiptStore,
	points PointsStore,
	storage ObjectStorage,
	extractor Extractor,
	scoring config.ScoringConfig,
	presignTTL time.Duration,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		receipts:   receipts,
		points:     points,
		storage:    storage,
		extractor:  extractor,
		scoring:    scoring,
		presignTTL: presignTTL,
		logger:     logger,
	}
}

// SubmitReceipt runs the intake pipeline for one uploaded image: resolve a
// readable URL, extract purchase data, normalize, fingerprint, classify,
// persist, and award points when approved. Every step is sequential with no
// internal retry; a failure before the insert leaves no trace.
func (s *ReceiptService) SubmitReceipt(ctx context.Context, userID uuid.UUID, storageKey string) (*dto.SubmitReceiptResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	imageURL, err := s.storage.PresignGetURL(ctx, storageKey, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve receipt image: %w", err)
	}

	extracted, err := s.extractor.Extract(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract receipt data: %w", err)
	}

	purchaseDate := extracted.PurchaseDate
	if purchaseDate.IsZero() {
		purchaseDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	fingerprint := Fingerprint(extracted.RetailerName, purchaseDate, extracted.TotalCents, extracted.InvoiceNumber)
	status := Classify(s.scoring, extracted.Confidence, extracted.Category)

	now := time.Now()
	receipt := &models.Receipt{
		ID:            uuid.New(),
		UserID:        userID,
		StorageKey:    storageKey,
		RawExtraction: extracted.Raw,
		OCRProvider:   s.extractor.Provider(),
		RetailerName:  extracted.RetailerName,
		Category:      extracted.Category,
		PurchaseDate:  purchaseDate,
		TotalCents:    extracted.TotalCents,
		Currency:      extracted.Currency,
		InvoiceNumber: extracted.InvoiceNumber,
		PaymentMethod: extracted.PaymentMethod,
		CardLastFour:  extracted.CardLastFour,
		Fingerprint:   fingerprint,
		Confidence:    extracted.Confidence,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The insert is the duplicate check. Racing submissions of the same
	// physical receipt both reach this point; the database constraint
	// decides, and exactly one row survives.
	if err := s.receipts.Create(ctx, receipt); err != nil {
		if errors.Is(err, repository.ErrDuplicateReceipt) {
			s.logger.Info("Duplicate receipt submission",
				zap.String("user_id", userID.String()),
				zap.String("fingerprint", fingerprint),
			)
			return &dto.SubmitReceiptResponse{
				Success:  true,
				Status:   string(models.StatusDuplicate),
				Retailer: extracted.RetailerName,
				Total:    float64(extracted.TotalCents) / 100,
				Message:  "This receipt has already been submitted",
			}, nil
		}
		return nil, fmt.Errorf("failed to create receipt record: %w", err)
	}

	var pointsAwarded int64
	if status == models.StatusApproved {
		pointsAwarded = PointsFor(s.scoring, extracted.TotalCents, extracted.Category)
		entry := &models.PointsEntry{
			ID:          uuid.New(),
			ReceiptID:   receipt.ID,
			UserID:      userID,
			Points:      pointsAwarded,
			Description: fmt.Sprintf("Receipt from %s", extracted.RetailerName),
			CreatedAt:   now,
		}
		if err := s.points.Award(ctx, entry); err != nil {
			// The receipt is legitimately approved; the missing ledger
			// entry is repaired by the reconciler.
			s.logger.Error("Points award failed, receipt left for reconciliation",
				zap.String("receipt_id", receipt.ID.String()),
				zap.Int64("points", pointsAwarded),
				zap.Error(err),
			)
		}
	}

	return &dto.SubmitReceiptResponse{
		Success:       true,
		Status:        string(status),
		ReceiptID:     receipt.ID.String(),
		PointsAwarded: pointsAwarded,
		Retailer:      extracted.RetailerName,
		Total:         float64(extracted.TotalCents) / 100,
		Message:       statusMessage(status),
	}, nil
}

func statusMessage(status models.ReceiptStatus) string {
	switch status {
	case models.StatusApproved:
		return "Receipt approved and points credited"
	case models.StatusQueued:
		return "Receipt queued for review"
	case models.StatusRejected:
		return "Receipt could not be verified"
	default:
		return ""
	}
}

func (s *ReceiptService) GetReceipt(ctx context.Context, userID, receiptID uuid.UUID) (*dto.ReceiptResponse, error) {
	receipt, err := s.receipts.GetByID(ctx, receiptID)
	if err != nil {
		return nil, ErrReceiptNotFound
	}

	if receipt.UserID != userID {
		return nil, ErrReceiptNotFound
	}

	return receiptResponse(receipt), nil
}

func (s *ReceiptService) ListReceipts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*dto.ReceiptResponse, error) {
	receipts, err := s.receipts.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ReceiptResponse, len(receipts))
	for i, receipt := range receipts {
		responses[i] = receiptResponse(receipt)
	}

	return responses, nil
}

func receiptResponse(receipt *models.Receipt) *dto.ReceiptResponse {
	return &dto.ReceiptResponse{
		ID:            receipt.ID.String(),
		RetailerName:  receipt.RetailerName,
		Category:      string(receipt.Category),
		PurchaseDate:  receipt.PurchaseDate.Format("2006-01-02"),
		Total:         float64(receipt.TotalCents) / 100,
		Currency:      receipt.Currency,
		InvoiceNumber: receipt.InvoiceNumber,
		PaymentMethod: string(receipt.PaymentMethod),
		Status:        string(receipt.Status),
		Confidence:    receipt.Confidence,
		CreatedAt:     receipt.CreatedAt.Format(time.RFC3339),
	}
}
