package dto

// CreateClientRequest persists a reusable client record
type CreateClientRequest struct {
	HotelID      uint   `json:"hotelId"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
}
