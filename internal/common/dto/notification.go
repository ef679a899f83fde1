package dto

// CreateNotificationRequest creates a notification directly (admin use);
// application-triggered notifications flow through the outbox instead
type CreateNotificationRequest struct {
	UserID     uint   `json:"userId" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Message    string `json:"message"`
	EntityKind string `json:"entityKind"`
	EntityID   uint   `json:"entityId"`
}
