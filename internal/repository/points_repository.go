package repository

import (
	"context"

	"loyalty-rewards/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PointsRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPointsRepository(db *pgxpool.Pool, logger *zap.Logger) *PointsRepository {
	return &PointsRepository{
		db:     db,
		logger: logger,
	}
}

// Award credits points for a receipt. The ledger has a unique constraint on
// receipt_id and the insert carries ON CONFLICT DO NOTHING, so invoking the
// award twice for the same receipt credits it exactly once.
func (r *PointsRepository) Award(ctx context.Context, entry *models.PointsEntry) error {
	query := squirrel.Insert("points_ledger").
		Columns("id", "receipt_id", "user_id", "points", "description", "created_at").
		Values(entry.ID, entry.ReceiptID, entry.UserID, entry.Points, entry.Description, entry.CreatedAt).
		Suffix("ON CONFLICT (receipt_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PointsRepository) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := squirrel.Select("COALESCE(SUM(points), 0)").
		From("points_ledger").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var balance int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&balance); err != nil {
		return 0, err
	}

	return balance, nil
}

func (r *PointsRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.PointsEntry, error) {
	query := squirrel.Select("id", "receipt_id", "user_id", "points", "description", "created_at").
		From("points_ledger").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PointsEntry
	for rows.Next() {
		var entry models.PointsEntry
		if err := rows.Scan(
			&entry.ID, &entry.ReceiptID, &entry.UserID, &entry.Points, &entry.Description, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
