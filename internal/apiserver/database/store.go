package database

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/staylinehq/stayline/internal/common/config"
)

// Store implements the Database interface on GORM
type Store struct {
	logger *zap.Logger
	db     *gorm.DB
}

var _ Database = (*Store)(nil)

// ErrInvalidDatabaseType is returned for unsupported database types
var ErrInvalidDatabaseType = errors.New("invalid database type")

// NewStore creates a database-backed store for the configured driver
func NewStore(logger *zap.Logger, cfg *config.DatabaseConfig) (*Store, error) {
	logger = logger.Named("database")

	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	case "mysql":
		dialector = mysql.Open(cfg.GetDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		return nil, ErrInvalidDatabaseType
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&Hotel{},
		&User{},
		&Client{},
		&Inquiry{},
		&InquiryNote{},
		&Quotation{},
		&QuotationItem{},
		&QuotationNote{},
		&Notification{},
		&NotificationOutbox{},
		&ReferenceCounter{},
		&IdempotencyKey{},
		&PasswordReset{},
	); err != nil {
		return nil, err
	}

	return &Store{
		logger: logger,
		db:     db,
	}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a transaction, exposing the transactional
// handle to nested store calls through the context
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func paginate(db *gorm.DB, page, pageSize int) *gorm.DB {
	if pageSize <= 0 {
		return db
	}
	if page < 1 {
		page = 1
	}
	return db.Offset((page - 1) * pageSize).Limit(pageSize)
}

// Hotels

func (s *Store) CreateHotel(ctx context.Context, hotel *Hotel) error {
	return getDBFromContext(ctx, s.db).Create(hotel).Error
}

func (s *Store) GetHotelByID(ctx context.Context, id uint) (*Hotel, error) {
	var hotel Hotel
	if err := getDBFromContext(ctx, s.db).First(&hotel, id).Error; err != nil {
		return nil, translate(err)
	}
	return &hotel, nil
}

func (s *Store) ListHotels(ctx context.Context) ([]*Hotel, error) {
	var hotels []*Hotel
	err := getDBFromContext(ctx, s.db).Order("name asc").Find(&hotels).Error
	return hotels, err
}

func (s *Store) UpdateHotel(ctx context.Context, hotel *Hotel) error {
	return getDBFromContext(ctx, s.db).Save(hotel).Error
}

func (s *Store) DeleteHotel(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, s.db).Delete(&Hotel{}, id).Error
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, s.db).Create(user).Error
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := getDBFromContext(ctx, s.db).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := getDBFromContext(ctx, s.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, hotelID *uint) ([]*User, error) {
	db := getDBFromContext(ctx, s.db)
	if hotelID != nil {
		db = db.Where("hotel_id = ?", *hotelID)
	}
	var users []*User
	err := db.Order("id asc").Find(&users).Error
	return users, err
}

func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, s.db).Save(user).Error
}

func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, s.db).Delete(&User{}, id).Error
}

func (s *Store) ListActiveManagers(ctx context.Context, hotelID uint) ([]*User, error) {
	var users []*User
	err := getDBFromContext(ctx, s.db).
		Where("hotel_id = ? AND role = ? AND is_active = ?", hotelID, RoleSalesManager, true).
		Find(&users).Error
	return users, err
}

// Clients

func (s *Store) CreateClient(ctx context.Context, client *Client) error {
	return getDBFromContext(ctx, s.db).Create(client).Error
}

func (s *Store) GetClientByID(ctx context.Context, id uint) (*Client, error) {
	var client Client
	if err := getDBFromContext(ctx, s.db).First(&client, id).Error; err != nil {
		return nil, translate(err)
	}
	return &client, nil
}

// Inquiries

func (s *Store) CreateInquiry(ctx context.Context, inquiry *Inquiry) error {
	return getDBFromContext(ctx, s.db).Create(inquiry).Error
}

func (s *Store) GetInquiryByID(ctx context.Context, id uint) (*Inquiry, error) {
	var inquiry Inquiry
	err := getDBFromContext(ctx, s.db).
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&inquiry, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inquiry, nil
}

func (s *Store) ListInquiries(ctx context.Context, filter InquiryFilter) ([]*Inquiry, error) {
	db := getDBFromContext(ctx, s.db)
	if filter.HotelID != nil {
		db = db.Where("hotel_id = ?", *filter.HotelID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != nil {
		db = db.Where("assigned_to = ?", *filter.AssignedTo)
	}
	var inquiries []*Inquiry
	err := paginate(db.Order("created_at desc"), filter.Page, filter.PageSize).Find(&inquiries).Error
	return inquiries, err
}

func (s *Store) UpdateInquiry(ctx context.Context, inquiry *Inquiry) error {
	return getDBFromContext(ctx, s.db).Omit("Notes").Save(inquiry).Error
}

func (s *Store) DeleteInquiry(ctx context.Context, id uint) error {
	db := getDBFromContext(ctx, s.db)
	if err := db.Where("inquiry_id = ?", id).Delete(&InquiryNote{}).Error; err != nil {
		return err
	}
	return db.Delete(&Inquiry{}, id).Error
}

func (s *Store) AddInquiryNote(ctx context.Context, note *InquiryNote) error {
	return getDBFromContext(ctx, s.db).Create(note).Error
}

// Quotations

func (s *Store) CreateQuotation(ctx context.Context, quotation *Quotation) error {
	return getDBFromContext(ctx, s.db).Create(quotation).Error
}

func (s *Store) GetQuotationByID(ctx context.Context, id uint) (*Quotation, error) {
	var quotation Quotation
	err := getDBFromContext(ctx, s.db).
		Preload("Items").
		Preload("Notes", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&quotation, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &quotation, nil
}

func (s *Store) ListQuotations(ctx context.Context, filter QuotationFilter) ([]*Quotation, error) {
	db := getDBFromContext(ctx, s.db)
	if filter.HotelID != nil {
		db = db.Where("hotel_id = ?", *filter.HotelID)
	}
	if filter.InquiryID != nil {
		db = db.Where("inquiry_id = ?", *filter.InquiryID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	var quotations []*Quotation
	err := paginate(db.Preload("Items").Order("created_at desc"), filter.Page, filter.PageSize).
		Find(&quotations).Error
	return quotations, err
}

func (s *Store) UpdateQuotation(ctx context.Context, quotation *Quotation) error {
	return getDBFromContext(ctx, s.db).Omit("Items", "Notes").Save(quotation).Error
}

func (s *Store) ReplaceQuotationItems(ctx context.Context, quotationID uint, items []QuotationItem) error {
	db := getDBFromContext(ctx, s.db)
	if err := db.Where("quotation_id = ?", quotationID).Delete(&QuotationItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ID = 0
		items[i].QuotationID = quotationID
	}
	return db.Create(&items).Error
}

func (s *Store) DeleteQuotation(ctx context.Context, id uint) error {
	db := getDBFromContext(ctx, s.db)
	if err := db.Where("quotation_id = ?", id).Delete(&QuotationItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("quotation_id = ?", id).Delete(&QuotationNote{}).Error; err != nil {
		return err
	}
	return db.Delete(&Quotation{}, id).Error
}

func (s *Store) AddQuotationNote(ctx context.Context, note *QuotationNote) error {
	return getDBFromContext(ctx, s.db).Create(note).Error
}

// NextReference allocates the next quotation sequence for (hotel, period)
// with an atomic upsert. The increment and the read-back share one
// transaction, so the row lock taken by the upsert is held until the value is
// read and two concurrent creations can never observe the same sequence.
func (s *Store) NextReference(ctx context.Context, hotelID uint, period string) (int64, error) {
	allocate := func(db *gorm.DB) (int64, error) {
		counter := ReferenceCounter{HotelID: hotelID, Period: period, Seq: 1}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hotel_id"}, {Name: "period"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"seq": gorm.Expr("seq + 1")}),
		}).Create(&counter).Error
		if err != nil {
			return 0, err
		}

		var current ReferenceCounter
		if err := db.Where("hotel_id = ? AND period = ?", hotelID, period).First(&current).Error; err != nil {
			return 0, translate(err)
		}
		return current.Seq, nil
	}

	if tx := TransactionFromContext(ctx); tx != nil {
		return allocate(tx)
	}

	var seq int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		seq, txErr = allocate(tx)
		return txErr
	})
	return seq, err
}

// Notifications

func (s *Store) CreateNotification(ctx context.Context, n *Notification) error {
	return getDBFromContext(ctx, s.db).Create(n).Error
}

func (s *Store) GetNotificationByID(ctx context.Context, id uint) (*Notification, error) {
	var n Notification
	if err := getDBFromContext(ctx, s.db).First(&n, id).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID uint, filter NotificationFilter) ([]*Notification, error) {
	db := getDBFromContext(ctx, s.db).Where("user_id = ?", userID)
	if filter.UnreadOnly {
		db = db.Where("is_read = ?", false)
	}
	var notifications []*Notification
	err := paginate(db.Order("created_at desc"), filter.Page, filter.PageSize).Find(&notifications).Error
	return notifications, err
}

func (s *Store) MarkNotificationRead(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, s.db).
		Model(&Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID uint) error {
	return getDBFromContext(ctx, s.db).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (s *Store) DeleteNotification(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, s.db).Delete(&Notification{}, id).Error
}

// Notification outbox

func (s *Store) EnqueueNotifications(ctx context.Context, rows []*NotificationOutbox) error {
	if len(rows) == 0 {
		return nil
	}
	return getDBFromContext(ctx, s.db).Create(&rows).Error
}

func (s *Store) PendingOutbox(ctx context.Context, limit int) ([]*NotificationOutbox, error) {
	var rows []*NotificationOutbox
	err := getDBFromContext(ctx, s.db).
		Where("dispatched_at IS NULL").
		Order("id asc").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (s *Store) MarkOutboxDispatched(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return getDBFromContext(ctx, s.db).
		Model(&NotificationOutbox{}).
		Where("id IN ?", ids).
		Update("dispatched_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

// Idempotency

func (s *Store) GetIdempotencyKey(ctx context.Context, key string) (*IdempotencyKey, error) {
	var record IdempotencyKey
	if err := getDBFromContext(ctx, s.db).Where("key = ?", key).First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (s *Store) PutIdempotencyKey(ctx context.Context, record *IdempotencyKey) error {
	return getDBFromContext(ctx, s.db).Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error
}

// Password resets

func (s *Store) CreatePasswordReset(ctx context.Context, reset *PasswordReset) error {
	return getDBFromContext(ctx, s.db).Create(reset).Error
}

func (s *Store) GetPasswordReset(ctx context.Context, token string) (*PasswordReset, error) {
	var reset PasswordReset
	if err := getDBFromContext(ctx, s.db).Where("token = ?", token).First(&reset).Error; err != nil {
		return nil, translate(err)
	}
	return &reset, nil
}

func (s *Store) ListPasswordResets(ctx context.Context, userID uint) ([]*PasswordReset, error) {
	var resets []*PasswordReset
	if err := getDBFromContext(ctx, s.db).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&resets).Error; err != nil {
		return nil, err
	}
	return resets, nil
}

func (s *Store) MarkPasswordResetUsed(ctx context.Context, token string) error {
	return getDBFromContext(ctx, s.db).
		Model(&PasswordReset{}).
		Where("token = ?", token).
		Update("used_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}
