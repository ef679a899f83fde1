package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/dto"
)

// ListHotels returns all hotels for SYSTEM_ADMIN, otherwise only the
// caller's own hotel
func (h *Handler) ListHotels(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	if p.Role == database.RoleSystemAdmin {
		hotels, err := h.db.ListHotels(c.Request.Context())
		if err != nil {
			apierr.Respond(c, apierr.Internal(err))
			return
		}
		c.JSON(http.StatusOK, hotels)
		return
	}

	if p.HotelID == nil {
		c.JSON(http.StatusOK, []*database.Hotel{})
		return
	}
	hotel, err := h.db.GetHotelByID(c.Request.Context(), *p.HotelID)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, []*database.Hotel{hotel})
}

// GetHotel returns one hotel
func (h *Handler) GetHotel(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if !canAccessHotel(p, id) {
		forbidHotel(c)
		return
	}

	hotel, err := h.db.GetHotelByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("hotel_not_found", "hotel not found"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// CreateHotel creates a hotel. Restricted to SYSTEM_ADMIN at the route level.
func (h *Handler) CreateHotel(c *gin.Context) {
	var req dto.CreateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	hotel := &database.Hotel{
		Name:         req.Name,
		Street:       req.Street,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		IsActive:     true,
	}
	if err := h.db.CreateHotel(c.Request.Context(), hotel); err != nil {
		apierr.Respond(c, apierr.Conflict("hotel_exists", "a hotel with this name already exists").WithCause(err))
		return
	}
	c.JSON(http.StatusCreated, hotel)
}

// fetchScopedHotel loads a hotel after the principal's scope check
func (h *Handler) fetchScopedHotel(c *gin.Context) (*database.Hotel, bool) {
	p, ok := h.principal(c)
	if !ok {
		return nil, false
	}
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	if !canAccessHotel(p, id) {
		forbidHotel(c)
		return nil, false
	}

	hotel, err := h.db.GetHotelByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("hotel_not_found", "hotel not found"))
			return nil, false
		}
		apierr.Respond(c, apierr.Internal(err))
		return nil, false
	}
	return hotel, true
}

// UpdateHotel updates hotel master data
func (h *Handler) UpdateHotel(c *gin.Context) {
	hotel, ok := h.fetchScopedHotel(c)
	if !ok {
		return
	}

	var req dto.UpdateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	if req.Name != nil {
		hotel.Name = *req.Name
	}
	if req.Street != nil {
		hotel.Street = *req.Street
	}
	if req.City != nil {
		hotel.City = *req.City
	}
	if req.PostalCode != nil {
		hotel.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		hotel.Country = *req.Country
	}
	if req.ContactEmail != nil {
		hotel.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		hotel.ContactPhone = *req.ContactPhone
	}
	if req.IsActive != nil {
		hotel.IsActive = *req.IsActive
	}

	if err := h.db.UpdateHotel(c.Request.Context(), hotel); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// UpdateHotelBranding replaces the hotel's visual identity
func (h *Handler) UpdateHotelBranding(c *gin.Context) {
	hotel, ok := h.fetchScopedHotel(c)
	if !ok {
		return
	}

	var req dto.UpdateBrandingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	hotel.LogoURL = req.LogoURL
	hotel.PrimaryColor = req.PrimaryColor
	hotel.SecondaryColor = req.SecondaryColor

	if err := h.db.UpdateHotel(c.Request.Context(), hotel); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// UpdateHotelTaxSettings replaces the hotel's named tax rates
func (h *Handler) UpdateHotelTaxSettings(c *gin.Context) {
	hotel, ok := h.fetchScopedHotel(c)
	if !ok {
		return
	}

	var req dto.UpdateTaxSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}
	for _, rate := range req.TaxSettings {
		if rate.Rate < 0 {
			apierr.Respond(c, apierr.BadRequest("invalid_rate", "tax rates must not be negative"))
			return
		}
	}

	hotel.TaxSettings = req.TaxSettings
	if err := h.db.UpdateHotel(c.Request.Context(), hotel); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, hotel)
}

// DeleteHotel removes a hotel. Restricted to SYSTEM_ADMIN at the route level.
func (h *Handler) DeleteHotel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.db.DeleteHotel(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("hotel_not_found", "hotel not found"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "hotel deleted"})
}
