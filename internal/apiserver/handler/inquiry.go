package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/dto"
	"github.com/staylinehq/stayline/internal/pipeline"
)

// resolveHotelID picks the hotel a new record belongs to: SYSTEM_ADMIN
// callers must name one explicitly, everyone else writes into their own.
func resolveHotelID(p *dto.Principal, requested uint) (uint, error) {
	if p.Role == database.RoleSystemAdmin {
		if requested == 0 {
			return 0, apierr.BadRequest("hotel_required", "hotelId is required for system administrators")
		}
		return requested, nil
	}
	if p.HotelID == nil {
		return 0, apierr.Forbidden("hotel_scope", "account is not assigned to a hotel")
	}
	if requested != 0 && requested != *p.HotelID {
		return 0, apierr.Forbidden("hotel_scope", "record belongs to another hotel")
	}
	return *p.HotelID, nil
}

// CreateInquiry handles inquiry intake
func (h *Handler) CreateInquiry(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req dto.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	hotelID, err := resolveHotelID(p, req.HotelID)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	eventType := database.EventType(req.EventType)
	if !eventType.Valid() {
		apierr.Respond(c, apierr.BadRequest("invalid_event_type", "unknown event type"))
		return
	}
	if !req.EndDate.IsZero() && req.EndDate.Before(req.StartDate) {
		apierr.Respond(c, apierr.BadRequest("invalid_dates", "endDate precedes startDate"))
		return
	}
	if req.ClientID != nil {
		client, err := h.db.GetClientByID(c.Request.Context(), *req.ClientID)
		if err != nil || client.HotelID != hotelID {
			apierr.Respond(c, apierr.BadRequest("unknown_client", "client does not exist in this hotel"))
			return
		}
	}

	inquiry := &database.Inquiry{
		HotelID:            hotelID,
		ClientID:           req.ClientID,
		ClientName:         req.ClientName,
		ClientEmail:        req.ClientEmail,
		ClientPhone:        req.ClientPhone,
		ClientOrganization: req.ClientOrganization,
		EventType:          eventType,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		GuestCount:         req.GuestCount,
		Purpose:            req.Purpose,
		Conferencing:       req.Conferencing,
		Lodging:            req.Lodging,
		Transport:          req.Transport,
		AdditionalServices: req.AdditionalServices,
		SourceChannel:      req.SourceChannel,
		Campaign:           req.Campaign,
		ReferringAgent:     req.ReferringAgent,
		Status:             pipeline.InquiryNew,
		CreatedBy:          p.ID,
	}
	if err := h.db.CreateInquiry(c.Request.Context(), inquiry); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, inquiry)
}

// ListInquiries returns inquiries with optional status/assignee filters
func (h *Handler) ListInquiries(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	filter := database.InquiryFilter{Status: c.Query("status")}
	filter.Page, filter.PageSize = pageParams(c)
	if p.Role != database.RoleSystemAdmin {
		if p.HotelID == nil {
			c.JSON(http.StatusOK, []*database.Inquiry{})
			return
		}
		filter.HotelID = p.HotelID
	}
	if raw := c.Query("assigned_to"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			assignee := uint(id)
			filter.AssignedTo = &assignee
		}
	}

	inquiries, err := h.db.ListInquiries(c.Request.Context(), filter)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, inquiries)
}

// fetchScopedInquiry loads an inquiry and enforces the hotel scope
func (h *Handler) fetchScopedInquiry(c *gin.Context) (*database.Inquiry, bool) {
	p, ok := h.principal(c)
	if !ok {
		return nil, false
	}
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}

	inquiry, err := h.db.GetInquiryByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("inquiry_not_found", "inquiry not found"))
			return nil, false
		}
		apierr.Respond(c, apierr.Internal(err))
		return nil, false
	}
	if !canAccessHotel(p, inquiry.HotelID) {
		forbidHotel(c)
		return nil, false
	}
	return inquiry, true
}

// GetInquiry returns one inquiry with its notes
func (h *Handler) GetInquiry(c *gin.Context) {
	inquiry, ok := h.fetchScopedInquiry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

// UpdateInquiry mutates inquiry content. Terminal inquiries are frozen.
func (h *Handler) UpdateInquiry(c *gin.Context) {
	inquiry, ok := h.fetchScopedInquiry(c)
	if !ok {
		return
	}
	if inquiry.Status.Terminal() {
		apierr.Respond(c, apierr.Conflict("inquiry_terminal", "inquiry is in a terminal state"))
		return
	}

	var req dto.UpdateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	if req.ClientName != nil {
		inquiry.ClientName = *req.ClientName
	}
	if req.ClientEmail != nil {
		inquiry.ClientEmail = *req.ClientEmail
	}
	if req.ClientPhone != nil {
		inquiry.ClientPhone = *req.ClientPhone
	}
	if req.ClientOrganization != nil {
		inquiry.ClientOrganization = *req.ClientOrganization
	}
	if req.EventType != nil {
		eventType := database.EventType(*req.EventType)
		if !eventType.Valid() {
			apierr.Respond(c, apierr.BadRequest("invalid_event_type", "unknown event type"))
			return
		}
		inquiry.EventType = eventType
	}
	if req.StartDate != nil {
		inquiry.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		inquiry.EndDate = *req.EndDate
	}
	if !inquiry.EndDate.IsZero() && inquiry.EndDate.Before(inquiry.StartDate) {
		apierr.Respond(c, apierr.BadRequest("invalid_dates", "endDate precedes startDate"))
		return
	}
	if req.GuestCount != nil {
		inquiry.GuestCount = *req.GuestCount
	}
	if req.Purpose != nil {
		inquiry.Purpose = *req.Purpose
	}
	if req.Conferencing != nil {
		inquiry.Conferencing = *req.Conferencing
	}
	if req.Lodging != nil {
		inquiry.Lodging = *req.Lodging
	}
	if req.Transport != nil {
		inquiry.Transport = *req.Transport
	}
	if req.AdditionalServices != nil {
		inquiry.AdditionalServices = *req.AdditionalServices
	}
	if req.SourceChannel != nil {
		inquiry.SourceChannel = *req.SourceChannel
	}
	if req.Campaign != nil {
		inquiry.Campaign = *req.Campaign
	}
	if req.ReferringAgent != nil {
		inquiry.ReferringAgent = *req.ReferringAgent
	}

	if err := h.db.UpdateInquiry(c.Request.Context(), inquiry); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

// UpdateInquiryStatus transitions the inquiry lifecycle state. The assignee
// is notified when someone else moves their inquiry.
func (h *Handler) UpdateInquiryStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	inquiry, ok := h.fetchScopedInquiry(c)
	if !ok {
		return
	}

	var req dto.UpdateInquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}
	next := pipeline.InquiryStatus(req.Status)
	if !next.Valid() {
		apierr.Respond(c, apierr.BadRequest("invalid_status", "unknown inquiry status"))
		return
	}
	if !inquiry.Status.CanTransition(next) {
		apierr.Respond(c, apierr.Conflict("invalid_transition",
			fmt.Sprintf("cannot move inquiry from %s to %s", inquiry.Status, next)))
		return
	}

	prev := inquiry.Status
	inquiry.Status = next

	err := h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		if err := h.db.UpdateInquiry(ctx, inquiry); err != nil {
			return err
		}
		if inquiry.AssignedTo != nil && *inquiry.AssignedTo != p.ID {
			return h.db.EnqueueNotifications(ctx, []*database.NotificationOutbox{{
				UserID:     *inquiry.AssignedTo,
				Title:      "Inquiry status changed",
				Message:    fmt.Sprintf("Inquiry #%d moved from %s to %s", inquiry.ID, prev, next),
				EntityKind: "inquiry",
				EntityID:   inquiry.ID,
			}})
		}
		return nil
	})
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

// AssignInquiry hands the inquiry to a user of the same hotel
func (h *Handler) AssignInquiry(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	inquiry, ok := h.fetchScopedInquiry(c)
	if !ok {
		return
	}
	if inquiry.Status.Terminal() {
		apierr.Respond(c, apierr.Conflict("inquiry_terminal", "inquiry is in a terminal state"))
		return
	}

	var req dto.AssignInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	assignee, err := h.db.GetUserByID(c.Request.Context(), req.UserID)
	if err != nil {
		apierr.Respond(c, apierr.BadRequest("unknown_user", "assignee does not exist"))
		return
	}
	if !assignee.IsActive || assignee.HotelID == nil || *assignee.HotelID != inquiry.HotelID {
		apierr.Respond(c, apierr.BadRequest("invalid_assignee", "assignee must be an active user of the same hotel"))
		return
	}

	inquiry.AssignedTo = &assignee.ID
	err = h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		if err := h.db.UpdateInquiry(ctx, inquiry); err != nil {
			return err
		}
		if assignee.ID == p.ID {
			return nil
		}
		return h.db.EnqueueNotifications(ctx, []*database.NotificationOutbox{{
			UserID:     assignee.ID,
			Title:      "Inquiry assigned to you",
			Message:    fmt.Sprintf("Inquiry #%d from %s has been assigned to you", inquiry.ID, inquiry.ClientName),
			EntityKind: "inquiry",
			EntityID:   inquiry.ID,
		}})
	})
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

// AddInquiryNote appends to the inquiry's notes log
func (h *Handler) AddInquiryNote(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	inquiry, ok := h.fetchScopedInquiry(c)
	if !ok {
		return
	}

	var req dto.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	note := &database.InquiryNote{
		InquiryID: inquiry.ID,
		AuthorID:  p.ID,
		Text:      req.Text,
	}
	if err := h.db.AddInquiryNote(c.Request.Context(), note); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, note)
}

// DeleteInquiry removes an inquiry. Restricted to elevated roles at the
// route level.
func (h *Handler) DeleteInquiry(c *gin.Context) {
	inquiry, ok := h.fetchScopedInquiry(c)
	if !ok {
		return
	}
	if err := h.db.DeleteInquiry(c.Request.Context(), inquiry.ID); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "inquiry deleted"})
}
