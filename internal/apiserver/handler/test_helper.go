package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/auth/jwt"
	"github.com/staylinehq/stayline/internal/common/config"
	"github.com/staylinehq/stayline/internal/common/dto"
	"github.com/staylinehq/stayline/internal/pipeline"
)

// testEnv wires a handler against a real sqlite-backed store so transaction
// semantics behave as in production.
type testEnv struct {
	store   *database.Store
	handler *Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbCfg := &config.DatabaseConfig{
		Type:   "sqlite",
		DBName: filepath.Join(t.TempDir(), "handler_test.db"),
	}
	store, err := database.NewStore(zap.NewNop(), dbCfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: "test-secret-test-secret-test-secret!",
		Duration:  time.Hour,
	})
	require.NoError(t, err)

	cfg := &config.APIServerConfig{}
	cfg.JWT.Duration = time.Hour

	return &testEnv{
		store:   store,
		handler: NewHandler(store, jwtService, cfg, zap.NewNop()),
	}
}

// asPrincipal builds a middleware that injects a fixed principal, bypassing
// token validation
func asPrincipal(p *dto.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("principal", p)
		c.Next()
	}
}

func principalFor(u *database.User) *dto.Principal {
	return &dto.Principal{ID: u.ID, Email: u.Email, Role: u.Role, HotelID: u.HotelID}
}

// router registers the full authenticated route surface with the given
// principal injected
func (e *testEnv) router(p *dto.Principal) *gin.Engine {
	r := gin.New()
	h := e.handler

	api := r.Group("/api", asPrincipal(p))

	api.GET("/hotels", h.ListHotels)
	api.GET("/hotels/:id", h.GetHotel)
	api.POST("/hotels", h.CreateHotel)
	api.PUT("/hotels/:id", h.UpdateHotel)
	api.PUT("/hotels/:id/branding", h.UpdateHotelBranding)
	api.PUT("/hotels/:id/tax-settings", h.UpdateHotelTaxSettings)
	api.DELETE("/hotels/:id", h.DeleteHotel)

	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.POST("/users", h.CreateUser)
	api.PUT("/users/:id", h.UpdateUser)
	api.DELETE("/users/:id", h.DeleteUser)

	api.GET("/inquiries", h.ListInquiries)
	api.GET("/inquiries/:id", h.GetInquiry)
	api.POST("/inquiries", h.CreateInquiry)
	api.PUT("/inquiries/:id", h.UpdateInquiry)
	api.PUT("/inquiries/:id/status", h.UpdateInquiryStatus)
	api.PUT("/inquiries/:id/assign", h.AssignInquiry)
	api.POST("/inquiries/:id/notes", h.AddInquiryNote)
	api.DELETE("/inquiries/:id", h.DeleteInquiry)

	api.POST("/clients", h.CreateClient)
	api.GET("/clients/:id", h.GetClient)

	api.GET("/quotations", h.ListQuotations)
	api.GET("/quotations/:id", h.GetQuotation)
	api.POST("/quotations", h.CreateQuotation)
	api.PUT("/quotations/:id", h.UpdateQuotation)
	api.POST("/quotations/:id/send", h.SendQuotation)
	api.PUT("/quotations/:id/status", h.UpdateQuotationStatus)
	api.POST("/quotations/:id/notes", h.AddQuotationNote)
	api.DELETE("/quotations/:id", h.DeleteQuotation)

	api.GET("/notifications", h.ListNotifications)
	api.GET("/notifications/:id", h.GetNotification)
	api.POST("/notifications", h.CreateNotification)
	api.PUT("/notifications/:id/read", h.MarkNotificationRead)
	api.PUT("/notifications/mark-all-read", h.MarkAllNotificationsRead)
	api.DELETE("/notifications/:id", h.DeleteNotification)

	return r
}

func (e *testEnv) do(t *testing.T, p *dto.Principal, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router(p).ServeHTTP(w, req)
	return w
}

// doJSON performs a request against a prebuilt router
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (e *testEnv) seedHotel(t *testing.T, name string) *database.Hotel {
	t.Helper()
	hotel := &database.Hotel{Name: name, City: "Mombasa", IsActive: true}
	require.NoError(t, e.store.CreateHotel(t.Context(), hotel))
	return hotel
}

func (e *testEnv) seedUser(t *testing.T, email string, role database.UserRole, hotelID *uint) *database.User {
	t.Helper()
	user := &database.User{
		Name:     "Test User",
		Email:    email,
		Password: "$2a$10$invalidhashforloginpaths0000000000000000000000000000",
		Role:     role,
		HotelID:  hotelID,
		IsActive: true,
	}
	require.NoError(t, e.store.CreateUser(t.Context(), user))
	return user
}

func (e *testEnv) seedInquiry(t *testing.T, hotelID uint, createdBy uint) *database.Inquiry {
	t.Helper()
	inquiry := &database.Inquiry{
		HotelID:    hotelID,
		ClientName: "Jomo Events Ltd",
		EventType:  database.EventConference,
		StartDate:  time.Now().Add(30 * 24 * time.Hour),
		EndDate:    time.Now().Add(32 * 24 * time.Hour),
		GuestCount: 80,
		Status:     pipeline.InquiryNew,
		CreatedBy:  createdBy,
	}
	require.NoError(t, e.store.CreateInquiry(t.Context(), inquiry))
	return inquiry
}
