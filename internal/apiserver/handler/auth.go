package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/dto"
)

const resetTokenTTL = time.Hour

// Register handles account self-registration
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	role := database.UserRole(req.Role)
	if !role.Valid() {
		apierr.Respond(c, apierr.BadRequest("invalid_role", "unknown role"))
		return
	}
	if role == database.RoleSystemAdmin {
		apierr.Respond(c, apierr.Forbidden("role_not_allowed", "system administrators cannot self-register"))
		return
	}
	if req.HotelID == nil {
		apierr.Respond(c, apierr.BadRequest("hotel_required", "non-system-admin users must belong to a hotel"))
		return
	}
	if _, err := h.db.GetHotelByID(c.Request.Context(), *req.HotelID); err != nil {
		apierr.Respond(c, apierr.BadRequest("unknown_hotel", "hotel does not exist"))
		return
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

// Login handles user login
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	user, err := h.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		apierr.Respond(c, apierr.Unauthorized("invalid_credentials", "invalid email or password"))
		return
	}
	if !user.IsActive {
		apierr.Respond(c, apierr.Unauthorized("account_deactivated", "account is deactivated"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		apierr.Respond(c, apierr.Unauthorized("invalid_credentials", "invalid email or password"))
		return
	}

	var hotelID uint
	if user.HotelID != nil {
		hotelID = *user.HotelID
	}
	token, err := h.jwtService.GenerateToken(user.ID, user.Email, string(user.Role), hotelID)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := h.db.UpdateUser(c.Request.Context(), user); err != nil {
		h.logger.Warn("failed to record last login",
			zap.Uint("user_id", user.ID),
			zap.Error(err))
	}

	c.SetCookie("token", token, int(h.cfg.JWT.Duration.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": &dto.Principal{
			ID:      user.ID,
			Email:   user.Email,
			Role:    user.Role,
			HotelID: user.HotelID,
		},
	})
}

// Logout clears the token cookie
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Verify returns the principal behind the current token
func (h *Handler) Verify(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": p})
}

// ForgotPassword issues a reset token. The response is identical whether or
// not the email exists, so the endpoint cannot be used to probe accounts.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	if user, err := h.db.GetUserByEmail(c.Request.Context(), req.Email); err == nil && user.IsActive {
		reset := &database.PasswordReset{
			Token:     uuid.NewString(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(resetTokenTTL),
		}
		if err := h.db.CreatePasswordReset(c.Request.Context(), reset); err != nil {
			h.logger.Error("failed to create password reset", zap.Error(err))
		} else {
			// Delivery is out of band; the token is only logged for operators.
			h.logger.Info("password reset issued", zap.Uint("user_id", user.ID))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, a reset link has been sent"})
}

// ResetPassword redeems a reset token for a new password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_request", err.Error()))
		return
	}

	reset, err := h.db.GetPasswordReset(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			apierr.Respond(c, apierr.BadRequest("invalid_token", "invalid or expired reset token"))
			return
		}
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	if reset.UsedAt != nil || time.Now().After(reset.ExpiresAt) {
		apierr.Respond(c, apierr.BadRequest("invalid_token", "invalid or expired reset token"))
		return
	}

	user, err := h.db.GetUserByID(c.Request.Context(), reset.UserID)
	if err != nil {
		apierr.Respond(c, apierr.BadRequest("invalid_token", "invalid or expired reset token"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	user.Password = string(hashed)

	err = h.db.Transaction(c.Request.Context(), func(ctx context.Context) error {
		if err := h.db.UpdateUser(ctx, user); err != nil {
			return err
		}
		return h.db.MarkPasswordResetUsed(ctx, reset.Token)
	})
	if err != nil {
		apierr.Respond(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
