package pipeline

import "math"

// DiscountType distinguishes percentage discounts from fixed amounts
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Discount is one discount applied to a quotation subtotal. For PERCENTAGE
// discounts Value is the rate and Amount is resolved against the subtotal;
// for FIXED discounts Amount equals Value.
type Discount struct {
	Type        DiscountType `json:"type"`
	Description string       `json:"description,omitempty"`
	Value       float64      `json:"value"`
	Amount      float64      `json:"amount"`
}

// Tax is one named tax applied after discounts. Amount is resolved from Rate
// against the discounted subtotal.
type Tax struct {
	Name   string  `json:"name"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// Commission is an optional agent commission on the quotation total
type Commission struct {
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// Totals is the aggregate money state of a quotation
type Totals struct {
	Subtotal      float64
	DiscountTotal float64
	TaxTotal      float64
	Total         float64
}

// Round2 rounds half away from zero to 2 decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineSubtotal computes one line item's subtotal
func LineSubtotal(quantity, unitPrice float64) float64 {
	return Round2(quantity * unitPrice)
}

// ComputeTotals resolves discount and tax amounts in place and returns the
// aggregate totals. The invariant total = subtotal - sum(discounts) +
// sum(taxes) holds by construction; callers persist these values verbatim and
// ignore any client-supplied totals.
func ComputeTotals(lineSubtotals []float64, discounts []Discount, taxes []Tax, commission *Commission) Totals {
	var t Totals
	for _, s := range lineSubtotals {
		t.Subtotal += s
	}
	t.Subtotal = Round2(t.Subtotal)

	for i := range discounts {
		switch discounts[i].Type {
		case DiscountPercentage:
			discounts[i].Amount = Round2(t.Subtotal * discounts[i].Value / 100)
		default:
			discounts[i].Amount = Round2(discounts[i].Value)
		}
		t.DiscountTotal += discounts[i].Amount
	}
	t.DiscountTotal = Round2(t.DiscountTotal)

	taxable := Round2(t.Subtotal - t.DiscountTotal)
	for i := range taxes {
		taxes[i].Amount = Round2(taxable * taxes[i].Rate / 100)
		t.TaxTotal += taxes[i].Amount
	}
	t.TaxTotal = Round2(t.TaxTotal)

	t.Total = Round2(t.Subtotal - t.DiscountTotal + t.TaxTotal)

	if commission != nil {
		commission.Amount = Round2(t.Total * commission.Rate / 100)
	}
	return t
}
