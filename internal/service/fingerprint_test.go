package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(value string) time.Time {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFingerprintDeterminism(t *testing.T) {
	first := Fingerprint("PSO Petrol", date("2024-03-01"), 5000, "INV-42")
	second := Fingerprint("PSO Petrol", date("2024-03-01"), 5000, "INV-42")

	assert.Equal(t, first, second, "identical inputs must yield identical fingerprints")
}

func TestFingerprintChangesWithEachInput(t *testing.T) {
	base := Fingerprint("PSO Petrol", date("2024-03-01"), 5000, "INV-42")

	tests := []struct {
		name        string
		fingerprint string
	}{
		{"different retailer", Fingerprint("Shell", date("2024-03-01"), 5000, "INV-42")},
		{"different date", Fingerprint("PSO Petrol", date("2024-03-02"), 5000, "INV-42")},
		{"different total", Fingerprint("PSO Petrol", date("2024-03-01"), 5001, "INV-42")},
		{"different invoice", Fingerprint("PSO Petrol", date("2024-03-01"), 5000, "INV-43")},
		{"missing invoice", Fingerprint("PSO Petrol", date("2024-03-01"), 5000, "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.fingerprint)
		})
	}
}

func TestFingerprintRetailerNormalization(t *testing.T) {
	a := Fingerprint("PSO Petrol", date("2024-03-01"), 5000, "")
	b := Fingerprint("pso-petrol!", date("2024-03-01"), 5000, "")

	assert.Equal(t, a, b, "retailer normalization must ignore case and punctuation")
}

func TestFingerprintFormsCannotCollide(t *testing.T) {
	// An adversarial invoice number that reproduces the 3-part suffix of
	// another receipt must still produce a distinct key.
	withInvoice := Fingerprint("imtiaz", date("2024-03-01"), 20000, "imtiaz|2024-03-01|20000")
	withoutInvoice := Fingerprint("imtiaz", date("2024-03-01"), 20000, "")

	assert.NotEqual(t, withInvoice, withoutInvoice)
}

func TestFingerprintBlankInvoiceTreatedAsMissing(t *testing.T) {
	a := Fingerprint("Imtiaz", date("2024-03-01"), 20000, "   ")
	b := Fingerprint("Imtiaz", date("2024-03-01"), 20000, "")

	assert.Equal(t, a, b)
}
