package dto

import (
	"time"

	"github.com/staylinehq/stayline/internal/apiserver/database"
)

// CreateInquiryRequest represents an inquiry intake request
type CreateInquiryRequest struct {
	HotelID uint `json:"hotelId"`

	ClientID           *uint  `json:"clientId"`
	ClientName         string `json:"clientName" binding:"required"`
	ClientEmail        string `json:"clientEmail" binding:"omitempty,email"`
	ClientPhone        string `json:"clientPhone"`
	ClientOrganization string `json:"clientOrganization"`

	EventType  string    `json:"eventType" binding:"required"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	GuestCount int       `json:"guestCount"`
	Purpose    string    `json:"purpose"`

	Conferencing       database.ConferencingRequirement `json:"conferencing"`
	Lodging            database.LodgingRequirement      `json:"lodging"`
	Transport          database.TransportRequirement    `json:"transport"`
	AdditionalServices []string                         `json:"additionalServices"`

	SourceChannel  string `json:"sourceChannel"`
	Campaign       string `json:"campaign"`
	ReferringAgent string `json:"referringAgent"`
}

// UpdateInquiryRequest mutates inquiry content fields; nil fields are left
// unchanged. Status and assignment have dedicated endpoints.
type UpdateInquiryRequest struct {
	ClientName         *string    `json:"clientName"`
	ClientEmail        *string    `json:"clientEmail" binding:"omitempty,email"`
	ClientPhone        *string    `json:"clientPhone"`
	ClientOrganization *string    `json:"clientOrganization"`
	EventType          *string    `json:"eventType"`
	StartDate          *time.Time `json:"startDate"`
	EndDate            *time.Time `json:"endDate"`
	GuestCount         *int       `json:"guestCount"`
	Purpose            *string    `json:"purpose"`

	Conferencing       *database.ConferencingRequirement `json:"conferencing"`
	Lodging            *database.LodgingRequirement      `json:"lodging"`
	Transport          *database.TransportRequirement    `json:"transport"`
	AdditionalServices *[]string                         `json:"additionalServices"`

	SourceChannel  *string `json:"sourceChannel"`
	Campaign       *string `json:"campaign"`
	ReferringAgent *string `json:"referringAgent"`
}

// UpdateInquiryStatusRequest transitions an inquiry's lifecycle state
type UpdateInquiryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignInquiryRequest assigns an inquiry to a user of the same hotel
type AssignInquiryRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// AddNoteRequest appends a note to an inquiry or quotation
type AddNoteRequest struct {
	Text string `json:"text" binding:"required"`
}
