package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/dto"
)

// CreateClient persists a client record inquiries and quotations can
// reference
func (h *Handler) CreateClient(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}
	hotelID, err := resolveHotelID(p, req.HotelID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}

	client := &database.Client{
		HotelID:      hotelID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
	}
	if err := h.db.CreateClient(c.Request.Context(), client); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClient returns one client within the caller's hotel scope
func (h *Handler) GetClient(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	client, err := h.db.GetClientByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("client_not_found", "client not found"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if !canAccessHotel(p, client.HotelID) {
		forbidHotel(c)
		return
	}
	c.JSON(http.StatusOK, client)
}
