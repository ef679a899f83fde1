package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// InquiryFilter narrows ListInquiries. A nil HotelID means all hotels
// (SYSTEM_ADMIN only); zero values are ignored.
type InquiryFilter struct {
	HotelID    *uint
	Status     string
	AssignedTo *uint
	Page       int
	PageSize   int
}

// QuotationFilter narrows ListQuotations
type QuotationFilter struct {
	HotelID   *uint
	InquiryID *uint
	Status    string
	Page      int
	PageSize  int
}

// NotificationFilter narrows ListNotifications for one user
type NotificationFilter struct {
	UnreadOnly bool
	Page       int
	PageSize   int
}

// Database defines the methods for database operations
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn inside a transaction; implementations must make the
	// transactional handle visible to nested calls through the context.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Hotels
	CreateHotel(ctx context.Context, hotel *Hotel) error
	GetHotelByID(ctx context.Context, id uint) (*Hotel, error)
	ListHotels(ctx context.Context) ([]*Hotel, error)
	UpdateHotel(ctx context.Context, hotel *Hotel) error
	DeleteHotel(ctx context.Context, id uint) error

	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uint) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, hotelID *uint) ([]*User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uint) error
	// ListActiveManagers returns the ACTIVE SALES_MANAGER users of a hotel.
	ListActiveManagers(ctx context.Context, hotelID uint) ([]*User, error)

	// Clients
	CreateClient(ctx context.Context, client *Client) error
	GetClientByID(ctx context.Context, id uint) (*Client, error)

	// Inquiries
	CreateInquiry(ctx context.Context, inquiry *Inquiry) error
	GetInquiryByID(ctx context.Context, id uint) (*Inquiry, error)
	ListInquiries(ctx context.Context, filter InquiryFilter) ([]*Inquiry, error)
	UpdateInquiry(ctx context.Context, inquiry *Inquiry) error
	DeleteInquiry(ctx context.Context, id uint) error
	AddInquiryNote(ctx context.Context, note *InquiryNote) error

	// Quotations
	CreateQuotation(ctx context.Context, quotation *Quotation) error
	GetQuotationByID(ctx context.Context, id uint) (*Quotation, error)
	ListQuotations(ctx context.Context, filter QuotationFilter) ([]*Quotation, error)
	UpdateQuotation(ctx context.Context, quotation *Quotation) error
	// ReplaceQuotationItems swaps the full line-item set of a quotation.
	ReplaceQuotationItems(ctx context.Context, quotationID uint, items []QuotationItem) error
	DeleteQuotation(ctx context.Context, id uint) error
	AddQuotationNote(ctx context.Context, note *QuotationNote) error

	// NextReference atomically allocates the next quotation sequence number
	// for a hotel within a calendar-month period.
	NextReference(ctx context.Context, hotelID uint, period string) (int64, error)

	// Notifications
	CreateNotification(ctx context.Context, n *Notification) error
	GetNotificationByID(ctx context.Context, id uint) (*Notification, error)
	ListNotifications(ctx context.Context, userID uint, filter NotificationFilter) ([]*Notification, error)
	MarkNotificationRead(ctx context.Context, id uint) error
	MarkAllNotificationsRead(ctx context.Context, userID uint) error
	DeleteNotification(ctx context.Context, id uint) error

	// Notification outbox
	EnqueueNotifications(ctx context.Context, rows []*NotificationOutbox) error
	PendingOutbox(ctx context.Context, limit int) ([]*NotificationOutbox, error)
	MarkOutboxDispatched(ctx context.Context, ids []uint) error

	// Idempotency
	GetIdempotencyKey(ctx context.Context, key string) (*IdempotencyKey, error)
	PutIdempotencyKey(ctx context.Context, record *IdempotencyKey) error

	// Password resets
	CreatePasswordReset(ctx context.Context, reset *PasswordReset) error
	GetPasswordReset(ctx context.Context, token string) (*PasswordReset, error)
	ListPasswordResets(ctx context.Context, userID uint) ([]*PasswordReset, error)
	MarkPasswordResetUsed(ctx context.Context, token string) error
}
