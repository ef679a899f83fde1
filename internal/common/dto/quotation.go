package dto

import (
	"time"

	"github.com/staylinehq/stayline/internal/pipeline"
)

// QuotationItemInput is one line item as supplied by the client; subtotals
// are always recomputed server-side
type QuotationItemInput struct {
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description" binding:"required"`
	ResourceRef string  `json:"resourceRef"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unitPrice" binding:"gte=0"`
}

// DiscountInput is one discount as supplied by the client
type DiscountInput struct {
	Type        string  `json:"type" binding:"required,oneof=PERCENTAGE FIXED"`
	Description string  `json:"description"`
	Value       float64 `json:"value" binding:"gte=0"`
}

// TaxInput is one named tax rate as supplied by the client
type TaxInput struct {
	Name string  `json:"name" binding:"required"`
	Rate float64 `json:"rate" binding:"gte=0"`
}

// CommissionInput is an optional agent commission rate
type CommissionInput struct {
	Rate float64 `json:"rate" binding:"gte=0"`
}

// CreateQuotationRequest creates a quotation against an inquiry
type CreateQuotationRequest struct {
	InquiryID  uint                 `json:"inquiryId" binding:"required"`
	ClientID   *uint                `json:"clientId"`
	ValidUntil time.Time            `json:"validUntil"`
	Items      []QuotationItemInput `json:"items" binding:"required,min=1,dive"`
	Discounts  []DiscountInput      `json:"discounts" binding:"dive"`
	Taxes      []TaxInput           `json:"taxes" binding:"dive"`
	Commission *CommissionInput     `json:"commission"`
}

// UpdateQuotationRequest replaces quotation content; rejected once the
// quotation is ACCEPTED or REJECTED. Nil slices leave the part unchanged.
type UpdateQuotationRequest struct {
	ValidUntil *time.Time            `json:"validUntil"`
	Items      *[]QuotationItemInput `json:"items" binding:"omitempty,min=1,dive"`
	Discounts  *[]DiscountInput      `json:"discounts" binding:"omitempty,dive"`
	Taxes      *[]TaxInput           `json:"taxes" binding:"omitempty,dive"`
	Commission *CommissionInput      `json:"commission"`
}

// UpdateQuotationStatusRequest transitions a quotation's lifecycle state
type UpdateQuotationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ToDiscounts converts inputs to pipeline discounts with unresolved amounts
func ToDiscounts(in []DiscountInput) []pipeline.Discount {
	out := make([]pipeline.Discount, len(in))
	for i, d := range in {
		out[i] = pipeline.Discount{
			Type:        pipeline.DiscountType(d.Type),
			Description: d.Description,
			Value:       d.Value,
		}
	}
	return out
}

// ToTaxes converts inputs to pipeline taxes with unresolved amounts
func ToTaxes(in []TaxInput) []pipeline.Tax {
	out := make([]pipeline.Tax, len(in))
	for i, t := range in {
		out[i] = pipeline.Tax{Name: t.Name, Rate: t.Rate}
	}
	return out
}
