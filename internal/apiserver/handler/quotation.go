package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/dto"
	"github.com/staylinehq/stayline/internal/pipeline"
)

const defaultValidity = 30 * 24 * time.Hour

// buildItems converts line-item inputs, recomputing every subtotal
func buildItems(in []dto.QuotationItemInput) ([]database.QuotationItem, []float64) {
	items := make([]database.QuotationItem, len(in))
	subtotals := make([]float64, len(in))
	for i, item := range in {
		subtotals[i] = pipeline.LineSubtotal(item.Quantity, item.UnitPrice)
		items[i] = database.QuotationItem{
			Category:    item.Category,
			Description: item.Description,
			ResourceRef: item.ResourceRef,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Subtotal:    subtotals[i],
		}
	}
	return items, subtotals
}

// applyTotals writes the aggregate money state onto the quotation
func applyTotals(q *database.Quotation, t pipeline.Totals) {
	q.Subtotal = t.Subtotal
	q.Total = t.Total
}

// CreateQuotation creates a priced proposal against an inquiry. The
// reference is allocated atomically and the parent inquiry advances to
// QUOTATION_SENT in the same transaction.
func (h *Handler) CreateQuotation(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req dto.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	inquiry, err := h.db.GetInquiryByID(c.Request.Context(), req.InquiryID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("inquiry_not_found", "inquiry not found"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if !canAccessHotel(p, inquiry.HotelID) {
		forbidHotel(c)
		return
	}
	if inquiry.Status.Terminal() {
		apierr.Respond(c, apierr.Conflict("inquiry_terminal", "cannot quote a terminal inquiry"))
		return
	}
	if req.ClientID != nil {
		client, err := h.db.GetClientByID(c.Request.Context(), *req.ClientID)
		if err != nil || client.HotelID != inquiry.HotelID {
			apierr.Respond(c, apierr.BadRequest("unknown_client", "client does not exist in this hotel"))
			return
		}
	}

	hotel, err := h.db.GetHotelByID(c.Request.Context(), inquiry.HotelID)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}

	items, subtotals := buildItems(req.Items)
	discounts := dto.ToDiscounts(req.Discounts)
	taxes := dto.ToTaxes(req.Taxes)
	var commission *pipeline.Commission
	if req.Commission != nil {
		commission = &pipeline.Commission{Rate: req.Commission.Rate}
	}
	totals := pipeline.ComputeTotals(subtotals, discounts, taxes, commission)

	now := time.Now()
	validUntil := req.ValidUntil
	if validUntil.IsZero() {
		validUntil = now.Add(defaultValidity)
	}

	quotation := &database.Quotation{
		HotelID:    inquiry.HotelID,
		InquiryID:  inquiry.ID,
		ClientID:   req.ClientID,
		ValidUntil: validUntil,
		Items:      items,
		Discounts:  discounts,
		Taxes:      taxes,
		Commission: commission,
		Status:     pipeline.QuotationDraft,
		CreatedBy:  p.ID,
		UpdatedBy:  p.ID,
	}
	applyTotals(quotation, totals)

	err = h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		seq, err := h.db.NextReference(ctx, hotel.ID, pipeline.Period(now))
		if err != nil {
			return err
		}
		quotation.Reference = pipeline.FormatReference(hotel.Name, now, seq)
		if err := h.db.CreateQuotation(ctx, quotation); err != nil {
			return err
		}
		if inquiry.Status.CanTransition(pipeline.InquiryQuotationSent) {
			inquiry.Status = pipeline.InquiryQuotationSent
			return h.db.UpdateInquiry(ctx, inquiry)
		}
		return nil
	})
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, quotation)
}

// ListQuotations returns quotations with optional inquiry/status filters
func (h *Handler) ListQuotations(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	filter := database.QuotationFilter{Status: c.Query("status")}
	filter.Page, filter.PageSize = pageParams(c)
	if p.Role != database.RoleSystemAdmin {
		if p.HotelID == nil {
			c.JSON(http.StatusOK, []*database.Quotation{})
			return
		}
		filter.HotelID = p.HotelID
	}
	if raw := c.Query("inquiry_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			inquiryID := uint(id)
			filter.InquiryID = &inquiryID
		}
	}

	quotations, err := h.db.ListQuotations(c.Request.Context(), filter)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	now := time.Now()
	for _, q := range quotations {
		q.Status = pipeline.EffectiveQuotationStatus(q.Status, q.ValidUntil, now)
	}
	c.JSON(http.StatusOK, quotations)
}

// fetchScopedQuotation loads a quotation and enforces the hotel scope
func (h *Handler) fetchScopedQuotation(c *gin.Context) (*database.Quotation, bool) {
	p, ok := h.principal(c)
	if !ok {
		return nil, false
	}
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}

	quotation, err := h.db.GetQuotationByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("quotation_not_found", "quotation not found"))
			return nil, false
		}
		apierr.Respond(c, apierr.Internal(err))
		return nil, false
	}
	if !canAccessHotel(p, quotation.HotelID) {
		forbidHotel(c)
		return nil, false
	}
	return quotation, true
}

// GetQuotation returns one quotation, resolving time-based expiry
func (h *Handler) GetQuotation(c *gin.Context) {
	quotation, ok := h.fetchScopedQuotation(c)
	if !ok {
		return
	}
	quotation.Status = pipeline.EffectiveQuotationStatus(quotation.Status, quotation.ValidUntil, time.Now())
	c.JSON(http.StatusOK, quotation)
}

// UpdateQuotation replaces quotation content and recomputes all totals.
// Accepted, rejected and expired quotations are frozen.
func (h *Handler) UpdateQuotation(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	quotation, ok := h.fetchScopedQuotation(c)
	if !ok {
		return
	}
	effective := pipeline.EffectiveQuotationStatus(quotation.Status, quotation.ValidUntil, time.Now())
	if !effective.Editable() {
		apierr.Respond(c, apierr.Conflict("quotation_frozen",
			fmt.Sprintf("quotation in status %s can no longer be edited", effective)))
		return
	}

	var req dto.UpdateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	if req.ValidUntil != nil {
		quotation.ValidUntil = *req.ValidUntil
	}
	if req.Discounts != nil {
		quotation.Discounts = dto.ToDiscounts(*req.Discounts)
	}
	if req.Taxes != nil {
		quotation.Taxes = dto.ToTaxes(*req.Taxes)
	}
	if req.Commission != nil {
		quotation.Commission = &pipeline.Commission{Rate: req.Commission.Rate}
	}

	var newItems []database.QuotationItem
	subtotals := make([]float64, 0, len(quotation.Items))
	if req.Items != nil {
		newItems, subtotals = buildItems(*req.Items)
	} else {
		for _, item := range quotation.Items {
			subtotals = append(subtotals, pipeline.LineSubtotal(item.Quantity, item.UnitPrice))
		}
	}
	totals := pipeline.ComputeTotals(subtotals, quotation.Discounts, quotation.Taxes, quotation.Commission)
	applyTotals(quotation, totals)
	quotation.UpdatedBy = p.ID

	err := h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		if newItems != nil {
			if err := h.db.ReplaceQuotationItems(ctx, quotation.ID, newItems); err != nil {
				return err
			}
			quotation.Items = newItems
		}
		return h.db.UpdateQuotation(ctx, quotation)
	})
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, quotation)
}

// SendQuotation marks the quotation as delivered to the client and advances
// the parent inquiry
func (h *Handler) SendQuotation(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	quotation, ok := h.fetchScopedQuotation(c)
	if !ok {
		return
	}

	now := time.Now()
	effective := pipeline.EffectiveQuotationStatus(quotation.Status, quotation.ValidUntil, now)
	if !effective.CanTransition(pipeline.QuotationSent) {
		apierr.Respond(c, apierr.Conflict("invalid_transition",
			fmt.Sprintf("cannot send a quotation in status %s", effective)))
		return
	}

	quotation.Status = pipeline.QuotationSent
	quotation.SentAt = &now
	quotation.UpdatedBy = p.ID

	err := h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		if err := h.db.UpdateQuotation(ctx, quotation); err != nil {
			return err
		}
		inquiry, err := h.db.GetInquiryByID(ctx, quotation.InquiryID)
		if err != nil {
			return err
		}
		if inquiry.Status.CanTransition(pipeline.InquiryQuotationSent) {
			inquiry.Status = pipeline.InquiryQuotationSent
			return h.db.UpdateInquiry(ctx, inquiry)
		}
		return nil
	})
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, quotation)
}

// UpdateQuotationStatus transitions the quotation lifecycle state. Accepting
// converts the parent inquiry and notifies the hotel's active sales managers
// inside the same transaction as the status change; a retried accept is a
// no-op.
func (h *Handler) UpdateQuotationStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	quotation, ok := h.fetchScopedQuotation(c)
	if !ok {
		return
	}

	var req dto.UpdateQuotationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}
	next := pipeline.QuotationStatus(req.Status)
	if !next.Valid() {
		apierr.Respond(c, apierr.BadRequest("invalid_status", "unknown quotation status"))
		return
	}

	// Retried terminal transitions succeed without re-running side effects.
	if quotation.Status == next && next.Terminal() {
		c.JSON(http.StatusOK, quotation)
		return
	}

	now := time.Now()
	effective := pipeline.EffectiveQuotationStatus(quotation.Status, quotation.ValidUntil, now)
	if !effective.CanTransition(next) {
		apierr.Respond(c, apierr.Conflict("invalid_transition",
			fmt.Sprintf("cannot move quotation from %s to %s", effective, next)))
		return
	}

	quotation.Status = next
	quotation.UpdatedBy = p.ID
	switch next {
	case pipeline.QuotationSent:
		quotation.SentAt = &now
	case pipeline.QuotationAccepted, pipeline.QuotationRejected:
		quotation.RespondedAt = &now
	}

	err := h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		if err := h.db.UpdateQuotation(ctx, quotation); err != nil {
			return err
		}
		switch next {
		case pipeline.QuotationAccepted:
			return h.acceptCascade(ctx, quotation)
		case pipeline.QuotationRejected:
			if quotation.CreatedBy == p.ID {
				return nil
			}
			return h.db.EnqueueNotifications(ctx, []*database.NotificationOutbox{{
				UserID:     quotation.CreatedBy,
				Title:      "Quotation rejected",
				Message:    fmt.Sprintf("Quotation %s was rejected by the client", quotation.Reference),
				EntityKind: "quotation",
				EntityID:   quotation.ID,
			}})
		}
		return nil
	})
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, quotation)
}

// acceptCascade converts the parent inquiry and enqueues notifications for
// the hotel's active sales managers. Runs inside the accept transaction.
func (h *Handler) acceptCascade(ctx context.Context, quotation *database.Quotation) error {
	inquiry, err := h.db.GetInquiryByID(ctx, quotation.InquiryID)
	if err != nil {
		return err
	}
	if inquiry.Status.CanTransition(pipeline.InquiryConverted) {
		inquiry.Status = pipeline.InquiryConverted
		if err := h.db.UpdateInquiry(ctx, inquiry); err != nil {
			return err
		}
	}

	managers, err := h.db.ListActiveManagers(ctx, quotation.HotelID)
	if err != nil {
		return err
	}
	if len(managers) == 0 {
		return nil
	}
	rows := make([]*database.NotificationOutbox, len(managers))
	for i, m := range managers {
		rows[i] = &database.NotificationOutbox{
			UserID:     m.ID,
			Title:      "Quotation accepted",
			Message:    fmt.Sprintf("Quotation %s was accepted by %s", quotation.Reference, inquiry.ClientName),
			EntityKind: "quotation",
			EntityID:   quotation.ID,
		}
	}
	return h.db.EnqueueNotifications(ctx, rows)
}

// AddQuotationNote appends to the quotation's notes log
func (h *Handler) AddQuotationNote(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	quotation, ok := h.fetchScopedQuotation(c)
	if !ok {
		return
	}

	var req dto.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	note := &database.QuotationNote{
		QuotationID: quotation.ID,
		AuthorID:    p.ID,
		Text:        req.Text,
	}
	if err := h.db.AddQuotationNote(c.Request.Context(), note); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, note)
}

// DeleteQuotation removes a quotation. Accepted quotations are kept for the
// record; elevated role is enforced at the route level.
func (h *Handler) DeleteQuotation(c *gin.Context) {
	quotation, ok := h.fetchScopedQuotation(c)
	if !ok {
		return
	}
	if quotation.Status == pipeline.QuotationAccepted {
		apierr.Respond(c, apierr.Conflict("quotation_accepted", "accepted quotations cannot be deleted"))
		return
	}
	if err := h.db.DeleteQuotation(c.Request.Context(), quotation.ID); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "quotation deleted"})
}
