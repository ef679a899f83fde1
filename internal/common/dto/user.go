package dto

// CreateUserRequest represents a user creation request
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	HotelID  *uint  `json:"hotelId"`
}

// UpdateUserRequest represents a user update request; nil fields are left
// unchanged
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Role     *string `json:"role"`
	HotelID  *uint   `json:"hotelId"`
	IsActive *bool   `json:"isActive"`
}
