package repository

import (
	"context"
	"time"

	"loyalty-rewards/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PromotionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPromotionRepository(db *pgxpool.Pool, logger *zap.Logger) *PromotionRepository {
	return &PromotionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *PromotionRepository) Create(ctx context.Context, promo *models.Promotion) error {
	query := squirrel.Insert("promotions").
		Columns("id", "title", "description", "image_url", "starts_at", "ends_at", "created_at").
		Values(promo.ID, promo.Title, promo.Description, promo.ImageURL, promo.StartsAt, promo.EndsAt, promo.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// ListActive returns promotions whose window contains the given time.
func (r *PromotionRepository) ListActive(ctx context.Context, now time.Time) ([]*models.Promotion, error) {
	query := squirrel.Select("id", "title", "description", "image_url", "starts_at", "ends_at", "created_at").
		From("promotions").
		Where(squirrel.LtOrEq{"starts_at": now}).
		Where(squirrel.GtOrEq{"ends_at": now}).
		OrderBy("starts_at DESC").
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

	var promotions []*models.Promotion
	for rows.Next() {
		var promo models.Promotion
		if err := rows.Scan(
			&promo.ID, &promo.Title, &promo.Description, &promo.ImageURL, &promo.StartsAt, &promo.EndsAt, &promo.CreatedAt,
		); err != nil {
			return nil, err
		}
		promotions = append(promotions, &promo)
	}

	return promotions, nil
}
