package models

import (
	"time"

	"github.com/google/uuid"
)

type ReceiptStatus string

const (
	StatusApproved ReceiptStatus = "approved"
	StatusRejected ReceiptStatus = "rejected"
	StatusQueued   ReceiptStatus = "queued"
	// StatusDuplicate is a submission outcome only; duplicate submissions
	// never produce a stored row.
	StatusDuplicate ReceiptStatus = "duplicate"
)

type RetailerCategory string

const (
	CategoryFuel       RetailerCategory = "fuel"
	CategoryGrocery    RetailerCategory = "grocery"
	CategoryRestaurant RetailerCategory = "restaurant"
	CategoryPharmacy   RetailerCategory = "pharmacy"
	CategoryOther      RetailerCategory = "other"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentMobileWallet PaymentMethod = "mobile-wallet"
)

// Receipt is one accepted submission. TotalCents keeps the amount in
// currency minor units. Fingerprint carries a UNIQUE constraint; insert
// conflicts on it are the duplicate-detection mechanism.
type Receipt struct {
	ID            uuid.UUID        `db:"id"`
	UserID        uuid.UUID        `db:"user_id"`
	StorageKey    string           `db:"storage_key"`
	RawExtraction string           `db:"raw_extraction"`
	OCRProvider   string           `db:"ocr_provider"`
	RetailerName  string           `db:"retailer_name"`
	Category      RetailerCategory `db:"category"`
	PurchaseDate  time.Time        `db:"purchase_date"`
	TotalCents    int64            `db:"total_cents"`
	Currency      string           `db:"currency"`
	InvoiceNumber string           `db:"invoice_number"`
	PaymentMethod PaymentMethod    `db:"payment_method"`
	CardLastFour  string           `db:"card_last_four"`
	Fingerprint   string           `db:"fingerprint"`
	Confidence    float64          `db:"confidence"`
	Status        ReceiptStatus    `db:"status"`
	CreatedAt     time.Time        `db:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at"`
}
