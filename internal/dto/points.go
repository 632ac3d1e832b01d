package dto

type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

type PointsEntryResponse struct {
	ID          string `json:"id"`
	ReceiptID   string `json:"receipt_id"`
	Points      int64  `json:"points"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}
