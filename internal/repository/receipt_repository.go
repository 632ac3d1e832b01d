package repository

import (
	"context"
	"errors"

	"loyalty-rewards/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrDuplicateReceipt signals a unique-constraint conflict on the
// fingerprint column. The conflict is detected by the database at insert
// time; callers must not pre-check existence.
var ErrDuplicateReceipt = errors.New("duplicate receipt fingerprint")

const uniqueViolationCode = "23505"

type ReceiptRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReceiptRepository(db *pgxpool.Pool, logger *zap.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	query := squirrel.Insert("receipts").
		Columns(
			"id", "user_id", "storage_key", "raw_extraction", "ocr_provider",
			"retailer_name", "category", "purchase_date", "total_cents", "currency",
			"invoice_number", "payment_method", "card_last_four",
			"fingerprint", "confidence", "status", "created_at", "updated_at",
		).
		Values(
			receipt.ID, receipt.UserID, receipt.StorageKey, receipt.RawExtraction, receipt.OCRProvider,
			receipt.RetailerName, receipt.Category, receipt.PurchaseDate, receipt.TotalCents, receipt.Currency,
			receipt.InvoiceNumber, receipt.PaymentMethod, receipt.CardLastFour,
			receipt.Fingerprint, receipt.Confidence, receipt.Status, receipt.CreatedAt, receipt.UpdatedAt,
		).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateReceipt
		}
		return err
	}

	return nil
}

func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	query := selectReceipts().
		Where(squirrel.Eq{"id": id})

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var receipt models.Receipt
	err = r.db.QueryRow(ctx, sql, args...).Scan(receiptFields(&receipt)...)
	if err != nil {
		return nil, err
	}

	return &receipt, nil
}

func (r *ReceiptRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Receipt, error) {
	query := selectReceipts().
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		var receipt models.Receipt
		if err := rows.Scan(receiptFields(&receipt)...); err != nil {
			return nil, err
		}
		receipts = append(receipts, &receipt)
	}

	return receipts, nil
}

// ListUnawarded returns approved receipts that have no ledger entry yet.
// These are the award-inconsistency cases the reconciler re-drives.
func (r *ReceiptRepository) ListUnawarded(ctx context.Context, limit int) ([]*models.Receipt, error) {
	query := selectReceipts().
		LeftJoin("points_ledger pl ON pl.receipt_id = receipts.id").
		Where(squirrel.Eq{"receipts.status": models.StatusApproved}).
		Where("pl.id IS NULL").
		OrderBy("receipts.created_at ASC").
		Limit(uint64(limit))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var receipts []*models.Receipt
	for rows.Next() {
		var receipt models.Receipt
		if err := rows.Scan(receiptFields(&receipt)...); err != nil {
			return nil, err
		}
		receipts = append(receipts, &receipt)
	}

	return receipts, nil
}

func selectReceipts() squirrel.SelectBuilder {
	return squirrel.Select(
		"receipts.id", "receipts.user_id", "receipts.storage_key", "receipts.raw_extraction", "receipts.ocr_provider",
		"receipts.retailer_name", "receipts.category", "receipts.purchase_date", "receipts.total_cents", "receipts.currency",
		"receipts.invoice_number", "receipts.payment_method", "receipts.card_last_four",
		"receipts.fingerprint", "receipts.confidence", "receipts.status", "receipts.created_at", "receipts.updated_at",
	).
		From("receipts").
		PlaceholderFormat(squirrel.Dollar)
}

func receiptFields(receipt *models.Receipt) []any {
	return []any{
		&receipt.ID, &receipt.UserID, &receipt.StorageKey, &receipt.RawExtraction, &receipt.OCRProvider,
		&receipt.RetailerName, &receipt.Category, &receipt.PurchaseDate, &receipt.TotalCents, &receipt.Currency,
		&receipt.InvoiceNumber, &receipt.PaymentMethod, &receipt.CardLastFour,
		&receipt.Fingerprint, &receipt.Confidence, &receipt.Status, &receipt.CreatedAt, &receipt.UpdatedAt,
	}
}
