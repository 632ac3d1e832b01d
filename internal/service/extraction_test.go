package service

import (
	"testing"

	"loyalty-rewards/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractionFullReceipt(t *testing.T) {
	raw := "```json\n" + `{
		"retailer_name": "PSO Petrol Station",
		"retailer_category": "fuel",
		"purchase_date": "2024-03-15",
		"total_amount": 89.45,
		"currency": "PKR",
		"invoice_number": "INV-8812",
		"payment_method": "card",
		"card_last_four": "4242",
		"confidence": 92,
		"items": [{"name": "Hi-Octane", "price": 89.45}]
	}` + "\n```"

	extracted, err := ParseExtraction(raw)
	require.NoError(t, err)

	assert.Equal(t, "PSO Petrol Station", extracted.RetailerName)
	assert.Equal(t, models.CategoryFuel, extracted.Category)
	assert.Equal(t, "2024-03-15", extracted.PurchaseDate.Format("2006-01-02"))
	assert.Equal(t, int64(8945), extracted.TotalCents)
	assert.Equal(t, "PKR", extracted.Currency)
	assert.Equal(t, "INV-8812", extracted.InvoiceNumber)
	assert.Equal(t, models.PaymentCard, extracted.PaymentMethod)
	assert.Equal(t, "4242", extracted.CardLastFour)
	assert.InDelta(t, 0.92, extracted.Confidence, 1e-9)
	require.Len(t, extracted.Items, 1)
	assert.Equal(t, "Hi-Octane", extracted.Items[0].Name)
	assert.Equal(t, raw, extracted.Raw)
}

func TestParseExtractionDefaults(t *testing.T) {
	extracted, err := ParseExtraction(`{}`)
	require.NoError(t, err)

	assert.Equal(t, "Unknown", extracted.RetailerName)
	assert.Equal(t, models.CategoryOther, extracted.Category)
	assert.Equal(t, "PKR", extracted.Currency)
	assert.True(t, extracted.PurchaseDate.IsZero())
	assert.Zero(t, extracted.TotalCents)
	assert.Zero(t, extracted.Confidence)
	assert.Empty(t, extracted.InvoiceNumber)
	assert.Empty(t, extracted.PaymentMethod)
}

func TestParseExtractionJSONInProse(t *testing.T) {
	raw := `Here is the extracted data: {"retailer_name": "Imtiaz", "total_amount": 200.00, "confidence": 0.45} Let me know if you need anything else.`

	extracted, err := ParseExtraction(raw)
	require.NoError(t, err)

	assert.Equal(t, "Imtiaz", extracted.RetailerName)
	assert.Equal(t, int64(20000), extracted.TotalCents)
	assert.InDelta(t, 0.45, extracted.Confidence, 1e-9)
}

func TestParseExtractionRejectsNonJSON(t *testing.T) {
	_, err := ParseExtraction("I could not read this receipt, the image is too blurry.")
	assert.Error(t, err)
}

func TestParseExtractionTotalNormalization(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected int64
	}{
		{"fractional cents round", `{"total_amount": 10.005}`, 1001},
		{"negative collapses to zero", `{"total_amount": -5.00}`, 0},
		{"string number tolerated", `{"total_amount": "150.50"}`, 15050},
		{"garbage string collapses to zero", `{"total_amount": "a lot"}`, 0},
		{"missing collapses to zero", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extracted, err := ParseExtraction(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, extracted.TotalCents)
		})
	}
}

func TestParseExtractionConfidenceNormalization(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected float64
	}{
		{"already unit scale", `{"confidence": 0.65}`, 0.65},
		{"percentage scale rescaled", `{"confidence": 65}`, 0.65},
		{"over a hundred clamps", `{"confidence": 250}`, 1},
		{"negative clamps", `{"confidence": -3}`, 0},
		{"exactly one", `{"confidence": 1}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extracted, err := ParseExtraction(tt.payload)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, extracted.Confidence, 1e-9)
		})
	}
}

func TestParseExtractionCardDigitsRequireCardPayment(t *testing.T) {
	extracted, err := ParseExtraction(`{"payment_method": "cash", "card_last_four": "4242"}`)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCash, extracted.PaymentMethod)
	assert.Empty(t, extracted.CardLastFour)
}

func TestParseExtractionUnknownEnumsCollapse(t *testing.T) {
	extracted, err := ParseExtraction(`{"retailer_category": "electronics", "payment_method": "cheque"}`)
	require.NoError(t, err)

	assert.Equal(t, models.CategoryOther, extracted.Category)
	assert.Empty(t, extracted.PaymentMethod)
}

func TestParseExtractionBadDateIgnored(t *testing.T) {
	extracted, err := ParseExtraction(`{"purchase_date": "15/03/2024"}`)
	require.NoError(t, err)

	assert.True(t, extracted.PurchaseDate.IsZero())
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripCodeFences(tt.input))
		})
	}
}
