package database

import (
	"time"

	"github.com/staylinehq/stayline/internal/pipeline"
)

// UserRole represents the role of a user
type UserRole string

const (
	RoleSystemAdmin  UserRole = "SYSTEM_ADMIN"
	RoleHotelAdmin   UserRole = "HOTEL_ADMIN"
	RoleSalesManager UserRole = "SALES_MANAGER"
	RoleSalesRep     UserRole = "SALES_REP"
	RoleOperations   UserRole = "OPERATIONS"
)

// Valid reports whether the role is a member of the closed enum
func (r UserRole) Valid() bool {
	switch r {
	case RoleSystemAdmin, RoleHotelAdmin, RoleSalesManager, RoleSalesRep, RoleOperations:
		return true
	}
	return false
}

// Elevated reports whether the role may delete inquiries and quotations
func (r UserRole) Elevated() bool {
	return r == RoleSystemAdmin || r == RoleHotelAdmin || r == RoleSalesManager
}

// EventType classifies what an inquiry is about
type EventType string

const (
	EventConference EventType = "CONFERENCE"
	EventLodging    EventType = "LODGING"
	EventMixed      EventType = "MIXED"
)

// Valid reports whether the event type is a member of the closed enum
func (e EventType) Valid() bool {
	switch e {
	case EventConference, EventLodging, EventMixed:
		return true
	}
	return false
}

// TaxRate is one named tax percentage configured per hotel
type TaxRate struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// PaymentSettings holds the payment methods a hotel accepts and its default terms
type PaymentSettings struct {
	Methods      []string `json:"methods"`
	DefaultTerms string   `json:"defaultTerms"`
}

// Hotel is the scoping boundary for all other entities
type Hotel struct {
	ID             uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name           string `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Street         string `json:"street" gorm:"type:varchar(200)"`
	City           string `json:"city" gorm:"type:varchar(100)"`
	PostalCode     string `json:"postalCode" gorm:"type:varchar(20)"`
	Country        string `json:"country" gorm:"type:varchar(100)"`
	ContactEmail   string `json:"contactEmail" gorm:"type:varchar(200)"`
	ContactPhone   string `json:"contactPhone" gorm:"type:varchar(50)"`
	LogoURL        string `json:"logoUrl" gorm:"type:varchar(500)"`
	PrimaryColor   string `json:"primaryColor" gorm:"type:varchar(20)"`
	SecondaryColor string `json:"secondaryColor" gorm:"type:varchar(20)"`

	TaxSettings     []TaxRate       `json:"taxSettings" gorm:"serializer:json"`
	PaymentSettings PaymentSettings `json:"paymentSettings" gorm:"serializer:json"`

	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User is an account scoped to one hotel, except SYSTEM_ADMIN users whose
// HotelID is nil
type User struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"type:varchar(100)"`
	Email       string     `json:"email" gorm:"type:varchar(200);uniqueIndex"`
	Password    string     `json:"-" gorm:"not null"`
	Role        UserRole   `json:"role" gorm:"type:varchar(20);not null"`
	HotelID     *uint      `json:"hotelId" gorm:"index"`
	IsActive    bool       `json:"isActive" gorm:"not null;default:true"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Client is a persisted client record an inquiry or quotation may reference
type Client struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	HotelID      uint      `json:"hotelId" gorm:"index;not null"`
	Name         string    `json:"name" gorm:"type:varchar(200)"`
	Email        string    `json:"email" gorm:"type:varchar(200)"`
	Phone        string    `json:"phone" gorm:"type:varchar(50)"`
	Organization string    `json:"organization" gorm:"type:varchar(200)"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ConferencingRequirement is the conferencing block of an inquiry
type ConferencingRequirement struct {
	Required   bool     `json:"required"`
	Attendees  int      `json:"attendees,omitempty"`
	RoomLayout string   `json:"roomLayout,omitempty"`
	Equipment  []string `json:"equipment,omitempty"`
}

// LodgingRequirement is the lodging block of an inquiry
type LodgingRequirement struct {
	Required bool   `json:"required"`
	Rooms    int    `json:"rooms,omitempty"`
	RoomType string `json:"roomType,omitempty"`
	Nights   int    `json:"nights,omitempty"`
}

// TransportRequirement is the transport block of an inquiry
type TransportRequirement struct {
	Required       bool   `json:"required"`
	PickupLocation string `json:"pickupLocation,omitempty"`
	Vehicles       int    `json:"vehicles,omitempty"`
}

// Inquiry is a prospective client's request for hotel services, prior to
// pricing. Client contact fields are a snapshot; ClientID optionally links a
// persisted Client record.
type Inquiry struct {
	ID      uint `json:"id" gorm:"primaryKey;autoIncrement"`
	HotelID uint `json:"hotelId" gorm:"index;not null"`

	ClientID           *uint  `json:"clientId"`
	ClientName         string `json:"clientName" gorm:"type:varchar(200)"`
	ClientEmail        string `json:"clientEmail" gorm:"type:varchar(200)"`
	ClientPhone        string `json:"clientPhone" gorm:"type:varchar(50)"`
	ClientOrganization string `json:"clientOrganization" gorm:"type:varchar(200)"`

	EventType  EventType `json:"eventType" gorm:"type:varchar(20)"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	GuestCount int       `json:"guestCount"`
	Purpose    string    `json:"purpose" gorm:"type:text"`

	Conferencing       ConferencingRequirement `json:"conferencing" gorm:"serializer:json"`
	Lodging            LodgingRequirement      `json:"lodging" gorm:"serializer:json"`
	Transport          TransportRequirement    `json:"transport" gorm:"serializer:json"`
	AdditionalServices []string                `json:"additionalServices" gorm:"serializer:json"`

	SourceChannel  string `json:"sourceChannel" gorm:"type:varchar(100)"`
	Campaign       string `json:"campaign" gorm:"type:varchar(100)"`
	ReferringAgent string `json:"referringAgent" gorm:"type:varchar(200)"`

	AssignedTo *uint                  `json:"assignedTo" gorm:"index"`
	Status     pipeline.InquiryStatus `json:"status" gorm:"type:varchar(20);index;not null"`

	Notes []InquiryNote `json:"notes,omitempty" gorm:"foreignKey:InquiryID"`

	CreatedBy uint      `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InquiryNote is one entry of an inquiry's append-only notes log
type InquiryNote struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	InquiryID uint      `json:"inquiryId" gorm:"index;not null"`
	AuthorID  uint      `json:"authorId"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Quotation is a priced proposal derived from exactly one inquiry
type Quotation struct {
	ID        uint  `json:"id" gorm:"primaryKey;autoIncrement"`
	HotelID   uint  `json:"hotelId" gorm:"index;not null"`
	InquiryID uint  `json:"inquiryId" gorm:"index;not null"`
	ClientID  *uint `json:"clientId"`

	Reference  string    `json:"reference" gorm:"type:varchar(30);uniqueIndex;not null"`
	ValidUntil time.Time `json:"validUntil"`

	Items      []QuotationItem      `json:"items" gorm:"foreignKey:QuotationID"`
	Subtotal   float64              `json:"subtotal"`
	Discounts  []pipeline.Discount  `json:"discounts" gorm:"serializer:json"`
	Taxes      []pipeline.Tax       `json:"taxes" gorm:"serializer:json"`
	Total      float64              `json:"total"`
	Commission *pipeline.Commission `json:"commission,omitempty" gorm:"serializer:json"`

	Status      pipeline.QuotationStatus `json:"status" gorm:"type:varchar(20);index;not null"`
	SentAt      *time.Time               `json:"sentAt"`
	RespondedAt *time.Time               `json:"respondedAt"`

	Notes []QuotationNote `json:"notes,omitempty" gorm:"foreignKey:QuotationID"`

	CreatedBy uint      `json:"createdBy"`
	UpdatedBy uint      `json:"updatedBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// QuotationItem is one priced line within a quotation
type QuotationItem struct {
	ID          uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	QuotationID uint    `json:"quotationId" gorm:"index;not null"`
	Category    string  `json:"category" gorm:"type:varchar(50)"`
	Description string  `json:"description" gorm:"type:varchar(500)"`
	ResourceRef string  `json:"resourceRef" gorm:"type:varchar(100)"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit" gorm:"type:varchar(30)"`
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
}

// QuotationNote is one entry of a quotation's append-only notes log
type QuotationNote struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	QuotationID uint      `json:"quotationId" gorm:"index;not null"`
	AuthorID    uint      `json:"authorId"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Notification is a per-user informational record triggered by another
// entity's state change. The composite index serves the unread-inbox query.
type Notification struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint      `json:"userId" gorm:"index:idx_notifications_user_read,priority:1;not null"`
	Title      string    `json:"title" gorm:"type:varchar(200)"`
	Message    string    `json:"message" gorm:"type:text"`
	// column named is_read: "read" is reserved in MySQL
	Read       bool      `json:"read" gorm:"column:is_read;index:idx_notifications_user_read,priority:2;not null;default:false"`
	EntityKind string    `json:"entityKind" gorm:"type:varchar(30)"`
	EntityID   uint      `json:"entityId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NotificationOutbox rows are written in the same transaction as the
// triggering mutation and drained asynchronously by the dispatcher, so a
// notification failure can never fail the primary write.
type NotificationOutbox struct {
	ID           uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       uint       `json:"userId" gorm:"not null"`
	Title        string     `json:"title" gorm:"type:varchar(200)"`
	Message      string     `json:"message" gorm:"type:text"`
	EntityKind   string     `json:"entityKind" gorm:"type:varchar(30)"`
	EntityID     uint       `json:"entityId"`
	DispatchedAt *time.Time `json:"dispatchedAt" gorm:"index"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ReferenceCounter allocates quotation sequence numbers per hotel and
// calendar month. Seq advances via an atomic upsert, never count-then-insert.
type ReferenceCounter struct {
	HotelID uint   `gorm:"primaryKey;autoIncrement:false"`
	Period  string `gorm:"primaryKey;type:varchar(4)"`
	Seq     int64  `gorm:"not null"`
}

// IdempotencyKey stores the first response observed for a client-supplied
// key so retried mutations replay instead of re-executing
type IdempotencyKey struct {
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	UserID    uint      `gorm:"not null"`
	Method    string    `gorm:"type:varchar(10)"`
	Path      string    `gorm:"type:varchar(200)"`
	Status    int       `gorm:"not null"`
	Body      []byte
	CreatedAt time.Time
}

// PasswordReset is a single-use, expiring reset token
type PasswordReset struct {
	Token     string `gorm:"primaryKey;type:varchar(64)"`
	UserID    uint   `gorm:"index;not null"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
