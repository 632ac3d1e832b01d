package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"loyalty-rewards/internal/models"
)

// ExtractedReceipt is the structured result of the OCR step. The model's
// output is untrusted, so every field here has already been through the
// defaulting rules: missing or garbage values never survive past parsing.
type ExtractedReceipt struct {
	RetailerName  string
	Category      models.RetailerCategory
	PurchaseDate  time.Time // zero when the model omitted the date
	TotalCents    int64
	Currency      string
	InvoiceNumber string
	PaymentMethod models.PaymentMethod
	CardLastFour  string
	Confidence    float64
	Items         []LineItem
	Raw           string // verbatim model text, persisted for audit
}

type LineItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

const (
	defaultCurrency = "PKR"
	defaultRetailer = "Unknown"
)

// ParseExtraction turns raw model text into an ExtractedReceipt. The text
// may be wrapped in markdown fences or surrounded by commentary; anything
// that is not a JSON object inside it is a parse failure.
func ParseExtraction(raw string) (*ExtractedReceipt, error) {
	text := stripCodeFences(raw)

	// Keep only the outermost JSON object if the model wrapped it in prose
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start != -1 && end > start {
		text = text[start : end+1]
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse extraction JSON: %w", err)
	}

	extracted := &ExtractedReceipt{
		RetailerName:  stringField(fields, "retailer_name", defaultRetailer),
		Category:      normalizeCategory(stringField(fields, "retailer_category", "")),
		Currency:      stringField(fields, "currency", defaultCurrency),
		InvoiceNumber: strings.TrimSpace(stringField(fields, "invoice_number", "")),
		PaymentMethod: normalizePayment(stringField(fields, "payment_method", "")),
		TotalCents:    toMinorUnits(numberField(fields, "total_amount")),
		Confidence:    normalizeConfidence(numberField(fields, "confidence")),
		Raw:           raw,
	}

	// Card digits only make sense for card payments
	if extracted.PaymentMethod == models.PaymentCard {
		extracted.CardLastFour = stringField(fields, "card_last_four", "")
	}

	if dateStr := stringField(fields, "purchase_date", ""); dateStr != "" {
		if date, err := time.Parse("2006-01-02", dateStr); err == nil {
			extracted.PurchaseDate = date
		}
	}

	if itemsRaw, ok := fields["items"]; ok {
		if itemsJSON, err := json.Marshal(itemsRaw); err == nil {
			var items []LineItem
			if err := json.Unmarshal(itemsJSON, &items); err == nil {
				extracted.Items = items
			}
		}
	}

	return extracted, nil
}

// stripCodeFences removes markdown code-block markers the model tends to
// wrap JSON in, with or without a language tag.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// toMinorUnits converts a major-unit amount to integer cents, rounding to
// the nearest cent. Negative or non-finite amounts collapse to zero.
func toMinorUnits(amount float64) int64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0
	}
	return int64(math.Round(amount * 100))
}

// normalizeConfidence maps a model confidence onto [0,1]. The prompt asks
// for 0-100 but models answer on either scale, so values above 1 are
// rescaled before clamping.
func normalizeConfidence(confidence float64) float64 {
	if math.IsNaN(confidence) {
		return 0
	}
	if confidence > 1 {
		confidence = confidence / 100
	}
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func normalizeCategory(category string) models.RetailerCategory {
	switch models.RetailerCategory(strings.ToLower(strings.TrimSpace(category))) {
	case models.CategoryFuel:
		return models.CategoryFuel
	case models.CategoryGrocery:
		return models.CategoryGrocery
	case models.CategoryRestaurant:
		return models.CategoryRestaurant
	case models.CategoryPharmacy:
		return models.CategoryPharmacy
	default:
		return models.CategoryOther
	}
}

func normalizePayment(method string) models.PaymentMethod {
	switch models.PaymentMethod(strings.ToLower(strings.TrimSpace(method))) {
	case models.PaymentCash:
		return models.PaymentCash
	case models.PaymentCard:
		return models.PaymentCard
	case models.PaymentMobileWallet:
		return models.PaymentMobileWallet
	default:
		return ""
	}
}

func stringField(fields map[string]any, key, defaultValue string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return defaultValue
}

// numberField tolerates numbers the model returned as strings; anything
// unparseable becomes zero.
func numberField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}
