package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/dto"
)

// ListUsers returns users, scoped to the caller's hotel unless SYSTEM_ADMIN
func (h *Handler) ListUsers(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var hotelID *uint
	if p.Role != database.RoleSystemAdmin {
		hotelID = p.HotelID
	}
	users, err := h.db.ListUsers(c.Request.Context(), hotelID)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns one user within the caller's hotel scope
func (h *Handler) GetUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("user_not_found", "user not found"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if user.HotelID != nil && !canAccessHotel(p, *user.HotelID) {
		forbidHotel(c)
		return
	}
	if user.HotelID == nil && p.Role != database.RoleSystemAdmin && p.ID != user.ID {
		forbidHotel(c)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser creates a user. HOTEL_ADMIN may only create non-admin users
// inside their own hotel; SYSTEM_ADMIN may create anyone anywhere.
func (h *Handler) CreateUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	role := database.UserRole(req.Role)
	if !role.Valid() {
		apierr.Respond(c, apierr.BadRequest("invalid_role", "unknown role"))
		return
	}
	if role != database.RoleSystemAdmin && req.HotelID == nil {
		apierr.Respond(c, apierr.BadRequest("hotel_required", "non-system-admin users must belong to a hotel"))
		return
	}
	if role == database.RoleSystemAdmin && req.HotelID != nil {
		apierr.Respond(c, apierr.BadRequest("hotel_not_allowed", "system administrators are not hotel-scoped"))
		return
	}

	if p.Role != database.RoleSystemAdmin {
		if role == database.RoleSystemAdmin {
			apierr.Respond(c, apierr.Forbidden("role_not_allowed", "only system administrators may create system administrators"))
			return
		}
		if req.HotelID == nil || !canAccessHotel(p, *req.HotelID) {
			forbidHotel(c)
			return
		}
	}
	if req.HotelID != nil {
		if _, err := h.db.GetHotelByID(c.Request.Context(), *req.HotelID); err != nil {
			apierr.Respond(c, apierr.BadRequest("unknown_hotel", "hotel does not exist"))
			return
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}

	user := &database.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     role,
		HotelID:  req.HotelID,
		IsActive: true,
	}
	if err := h.db.CreateUser(c.Request.Context(), user); err != nil {
		apierr.Respond(c, apierr.Conflict("email_taken", "email is already registered").WithCause(err))
		return
	}
	c.JSON(http.StatusCreated, user)
}

// UpdateUser updates a user within the caller's hotel scope
func (h *Handler) UpdateUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("user_not_found", "user not found"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if p.Role != database.RoleSystemAdmin {
		if user.HotelID == nil || !canAccessHotel(p, *user.HotelID) {
			forbidHotel(c)
			return
		}
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			apierr.Respond(c, apierr.Internal(err))
			return
		}
		user.Password = string(hashed)
	}
	if req.Role != nil {
		role := database.UserRole(*req.Role)
		if !role.Valid() {
			apierr.Respond(c, apierr.BadRequest("invalid_role", "unknown role"))
			return
		}
		if role == database.RoleSystemAdmin && p.Role != database.RoleSystemAdmin {
			apierr.Respond(c, apierr.Forbidden("role_not_allowed", "only system administrators may grant this role"))
			return
		}
		user.Role = role
	}
	if req.HotelID != nil {
		if p.Role != database.RoleSystemAdmin && !canAccessHotel(p, *req.HotelID) {
			forbidHotel(c)
			return
		}
		user.HotelID = req.HotelID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a user within the caller's hotel scope
func (h *Handler) DeleteUser(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if p.ID == id {
		apierr.Respond(c, apierr.BadRequest("self_delete", "cannot delete your own account"))
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.NotFound("user_not_found", "user not found"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if p.Role != database.RoleSystemAdmin {
		if user.HotelID == nil || !canAccessHotel(p, *user.HotelID) {
			forbidHotel(c)
			return
		}
	}

	if err := h.db.DeleteUser(c.Request.Context(), id); err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
