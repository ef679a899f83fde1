package dto

import "github.com/staylinehq/stayline/internal/apiserver/database"

// Principal is the authenticated caller attached to the request context by
// the JWT middleware. HotelID is nil for SYSTEM_ADMIN users.
type Principal struct {
	ID      uint              `json:"id"`
	Email   string            `json:"email"`
	Role    database.UserRole `json:"role"`
	HotelID *uint             `json:"hotelId,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a self-registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	HotelID  *uint  `json:"hotelId"`
}

// ForgotPasswordRequest represents a password reset initiation
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest redeems a reset token for a new password
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}
