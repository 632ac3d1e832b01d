package dto

type SubmitReceiptRequest struct {
	StorageKey string `json:"storage_key" validate:"required"`
}

// SubmitReceiptResponse is the caller-facing outcome of a submission.
// Total is in currency major units; PointsAwarded is zero unless the
// receipt was approved.
type SubmitReceiptResponse struct {
	Success       bool    `json:"success"`
	Status        string  `json:"status"`
	ReceiptID     string  `json:"receipt_id,omitempty"`
	PointsAwarded int64   `json:"points_awarded"`
	Retailer      string  `json:"retailer"`
	Total         float64 `json:"total"`
	Message       string  `json:"message"`
}

type UploadReceiptResponse struct {
	StorageKey string `json:"storage_key"`
}

type ReceiptResponse struct {
	ID            string  `json:"id"`
	RetailerName  string  `json:"retailer_name"`
	Category      string  `json:"category"`
	PurchaseDate  string  `json:"purchase_date"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
	InvoiceNumber string  `json:"invoice_number,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	Status        string  `json:"status"`
	Confidence    float64 `json:"confidence"`
	CreatedAt     string  `json:"created_at"`
}
