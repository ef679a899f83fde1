package pipeline

import "time"

// EffectiveQuotationStatus resolves the time-based EXPIRED state at read
// time. A DRAFT or SENT quotation whose validity deadline has elapsed is
// reported as EXPIRED without a background sweep; terminal states are
// returned unchanged.
func EffectiveQuotationStatus(status QuotationStatus, validUntil time.Time, now time.Time) QuotationStatus {
	if status.Editable() && !validUntil.IsZero() && now.After(validUntil) {
		return QuotationExpired
	}
	return status
}
