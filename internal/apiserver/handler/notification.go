package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/dto"
)

// ListNotifications returns the caller's notifications, newest first
func (h *Handler) ListNotifications(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	filter := database.NotificationFilter{
		UnreadOnly: c.Query("unread") == "true",
	}
	filter.Page, filter.PageSize = pageParams(c)

	notifications, err := h.db.ListNotifications(c.Request.Context(), p.ID, filter)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// fetchOwnNotification loads a notification owned by the caller. Another
// user's notification reads as not found rather than forbidden so ids do not
// leak across accounts.
func (h *Handler) fetchOwnNotification(c *gin.Context) (*database.Notification, bool) {
	p, ok := h.principal(c)
	if !ok {
		return nil, false
	}
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}

	n, err := h.db.GetNotificationByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("notification_not_found", "notification not found"))
			return nil, false
		}
		apierr.Respond(c, apierr.Internal(err))
		return nil, false
	}
	if n.UserID != p.ID {
		apierr.Respond(c, apierr.NotFound("notification_not_found", "notification not found"))
		return nil, false
	}
	return n, true
}

// GetNotification returns one of the caller's notifications
func (h *Handler) GetNotification(c *gin.Context) {
	n, ok := h.fetchOwnNotification(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, n)
}

// CreateNotification creates a notification directly. Restricted to admin
// roles at the route level; application events flow through the outbox.
func (h *Handler) CreateNotification(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}
	if _, err := h.db.GetUserByID(c.Request.Context(), req.UserID); err != nil {
		apierr.Respond(c, apierr.BadRequest("unknown_user", "recipient does not exist"))
		return
	}

	n := &database.Notification{
		UserID:     req.UserID,
		Title:      req.Title,
		Message:    req.Message,
		EntityKind: req.EntityKind,
		EntityID:   req.EntityID,
	}
	if err := h.db.CreateNotification(c.Request.Context(), n); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusCreated, n)
}

// MarkNotificationRead marks one notification read; other notifications of
// the same user are untouched
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	n, ok := h.fetchOwnNotification(c)
	if !ok {
		return
	}
	if err := h.db.MarkNotificationRead(c.Request.Context(), n.ID); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	n.Read = true
	c.JSON(http.StatusOK, n)
}

// MarkAllNotificationsRead marks every notification of the caller read
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	if err := h.db.MarkAllNotificationsRead(c.Request.Context(), p.ID); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}

// DeleteNotification removes one of the caller's notifications
func (h *Handler) DeleteNotification(c *gin.Context) {
	n, ok := h.fetchOwnNotification(c)
	if !ok {
		return
	}
	if err := h.db.DeleteNotification(c.Request.Context(), n.ID); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}
