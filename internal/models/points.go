package models

import (
	"time"

	"github.com/google/uuid"
)

// PointsEntry is one credit in the append-only points ledger. ReceiptID
// carries a UNIQUE constraint so re-driving an award for the same receipt
// cannot double-credit.
type PointsEntry struct {
	ID          uuid.UUID `db:"id"`
	ReceiptID   uuid.UUID `db:"receipt_id"`
	UserID      uuid.UUID `db:"user_id"`
	Points      int64     `db:"points"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}
