package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/auth/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// mockDB implements the slices of database.Database the middleware touches.
// Unimplemented methods panic via the embedded nil interface.
type mockDB struct {
	database.Database
	users map[uint]*database.User
	keys  map[string]*database.IdempotencyKey
}

func newMockDB() *mockDB {
	return &mockDB{
		users: make(map[uint]*database.User),
		keys:  make(map[string]*database.IdempotencyKey),
	}
}

func (m *mockDB) GetUserByID(_ context.Context, id uint) (*database.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (m *mockDB) GetIdempotencyKey(_ context.Context, key string) (*database.IdempotencyKey, error) {
	k, ok := m.keys[key]
	if !ok {
		return nil, database.ErrNotFound
	}
	return k, nil
}

func (m *mockDB) PutIdempotencyKey(_ context.Context, record *database.IdempotencyKey) error {
	if _, ok := m.keys[record.Key]; !ok {
		m.keys[record.Key] = record
	}
	return nil
}

func newTestJWT(t *testing.T) *jwt.Service {
	t.Helper()
	svc, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)
	return svc
}

func authedRouter(t *testing.T, db database.Database, extra ...gin.HandlerFunc) (*gin.Engine, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestJWT(t)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(svc, db, zap.NewNop())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := PrincipalFromContext(c)
		c.JSON(http.StatusOK, p)
	})
	r.GET("/ping", handlers...)
	return r, svc
}

func TestAuthRequired(t *testing.T) {
	hotelID := uint(7)
	db := newMockDB()
	db.users[1] = &database.User{ID: 1, Email: "rep@acme.test", Role: database.RoleSalesRep, HotelID: &hotelID, IsActive: true}
	db.users[2] = &database.User{ID: 2, Email: "gone@acme.test", Role: database.RoleSalesRep, IsActive: false}

	r, svc := authedRouter(t, db)

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid bearer token", func(t *testing.T) {
		token, err := svc.GenerateToken(1, "rep@acme.test", string(database.RoleSalesRep), hotelID)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "rep@acme.test")
	})

	t.Run("token via cookie", func(t *testing.T) {
		token, err := svc.GenerateToken(1, "rep@acme.test", string(database.RoleSalesRep), hotelID)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		token, err := svc.GenerateToken(2, "gone@acme.test", string(database.RoleSalesRep), 0)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		token, err := svc.GenerateToken(99, "ghost@acme.test", string(database.RoleSalesRep), 0)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	db := newMockDB()
	db.users[1] = &database.User{ID: 1, Email: "ops@acme.test", Role: database.RoleOperations, IsActive: true}

	r, svc := authedRouter(t, db, RequireRoles(database.RoleSystemAdmin, database.RoleHotelAdmin))

	token, err := svc.GenerateToken(1, "ops@acme.test", string(database.RoleOperations), 0)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireElevated(t *testing.T) {
	db := newMockDB()
	db.users[1] = &database.User{ID: 1, Email: "manager@acme.test", Role: database.RoleSalesManager, IsActive: true}
	db.users[2] = &database.User{ID: 2, Email: "rep@acme.test", Role: database.RoleSalesRep, IsActive: true}

	r, svc := authedRouter(t, db, RequireElevated())

	cases := []struct {
		userID uint
		email  string
		role   database.UserRole
		want   int
	}{
		{1, "manager@acme.test", database.RoleSalesManager, http.StatusOK},
		{2, "rep@acme.test", database.RoleSalesRep, http.StatusForbidden},
	}
	for _, c := range cases {
		token, err := svc.GenerateToken(c.userID, c.email, string(c.role), 0)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, c.want, w.Code, c.email)
	}
}
