package dto

import "github.com/staylinehq/stayline/internal/apiserver/database"

// CreateHotelRequest represents a hotel creation request
type CreateHotelRequest struct {
	Name         string `json:"name" binding:"required"`
	Street       string `json:"street"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	ContactEmail string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone string `json:"contactPhone"`
}

// UpdateHotelRequest represents a hotel update request; nil fields are
// left unchanged
type UpdateHotelRequest struct {
	Name         *string `json:"name"`
	Street       *string `json:"street"`
	City         *string `json:"city"`
	PostalCode   *string `json:"postalCode"`
	Country      *string `json:"country"`
	ContactEmail *string `json:"contactEmail" binding:"omitempty,email"`
	ContactPhone *string `json:"contactPhone"`
	IsActive     *bool   `json:"isActive"`
}

// UpdateBrandingRequest updates a hotel's visual identity
type UpdateBrandingRequest struct {
	LogoURL        string `json:"logoUrl"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// UpdateTaxSettingsRequest replaces a hotel's named tax rates
type UpdateTaxSettingsRequest struct {
	TaxSettings []database.TaxRate `json:"taxSettings" binding:"required"`
}
