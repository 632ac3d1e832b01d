package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Fingerprint derives the dedup key for a receipt. It is a pure function of
// its inputs: the same (retailer, date, cents, invoice) always yields the
// same key. The two forms are tagged so a 3-part key can never equal a
// 4-part key, regardless of what the invoice number contains.
func Fingerprint(retailer string, purchaseDate time.Time, totalCents int64, invoiceNumber string) string {
	date := purchaseDate.Format("2006-01-02")
	normalized := normalizeRetailer(retailer)

	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber != "" {
		return fmt.Sprintf("inv|%s|%s|%d|%s", normalized, date, totalCents, invoiceNumber)
	}
	return fmt.Sprintf("noinv|%s|%s|%d", normalized, date, totalCents)
}

// normalizeRetailer lowercases the name and strips everything that is not a
// letter or digit, so "PSO Petrol" and "pso-petrol" fingerprint identically.
func normalizeRetailer(retailer string) string {
	var b strings.Builder
	b.Grow(len(retailer))
	for _, r := range strings.ToLower(retailer) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
