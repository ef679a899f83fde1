package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/dto"
)

// authRouter exposes the unauthenticated auth surface
func (e *testEnv) authRouter() *gin.Engine {
	r := gin.New()
	h := e.handler
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/forgot-password", h.ForgotPassword)
	r.POST("/api/auth/reset-password", h.ResetPassword)
	return r
}

func (e *testEnv) seedLoginUser(t *testing.T, email, password string, role database.UserRole, hotelID *uint) *database.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &database.User{
		Name:     "Login User",
		Email:    email,
		Password: string(hashed),
		Role:     role,
		HotelID:  hotelID,
		IsActive: true,
	}
	require.NoError(t, e.store.CreateUser(t.Context(), user))
	return user
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedHotel(t, "Acacia Grand")
	env.seedLoginUser(t, "rep@acacia.test", "s3cret-pass", database.RoleSalesRep, &hotel.ID)
	r := env.authRouter()

	t.Run("success returns token and records last login", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/login",
			dto.LoginRequest{Email: "rep@acacia.test", Password: "s3cret-pass"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "token")

		user, err := env.store.GetUserByEmail(t.Context(), "rep@acacia.test")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/login",
			dto.LoginRequest{Email: "rep@acacia.test", Password: "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/login",
			dto.LoginRequest{Email: "nobody@acacia.test", Password: "s3cret-pass"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		user := env.seedLoginUser(t, "off@acacia.test", "s3cret-pass", database.RoleSalesRep, &hotel.ID)
		user.IsActive = false
		require.NoError(t, env.store.UpdateUser(t.Context(), user))

		w := doJSON(t, r, http.MethodPost, "/api/auth/login",
			dto.LoginRequest{Email: "off@acacia.test", Password: "s3cret-pass"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedHotel(t, "Acacia Grand")
	r := env.authRouter()

	t.Run("creates a hotel-scoped user", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Name: "New Rep", Email: "new@acacia.test", Password: "longenough",
			Role: "SALES_REP", HotelID: &hotel.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.NotContains(t, w.Body.String(), "longenough", "password hash must not echo the password")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Name: "Dup", Email: "new@acacia.test", Password: "longenough",
			Role: "SALES_REP", HotelID: &hotel.ID,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("system admin cannot self-register", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Name: "Root", Email: "root@stayline.test", Password: "longenough",
			Role: "SYSTEM_ADMIN",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("hotel is required", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/auth/register", dto.RegisterRequest{
			Name: "No Hotel", Email: "nohotel@acacia.test", Password: "longenough",
			Role: "SALES_REP",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedHotel(t, "Acacia Grand")
	user := env.seedLoginUser(t, "rep@acacia.test", "old-password", database.RoleSalesRep, &hotel.ID)
	r := env.authRouter()

	// the response never reveals whether the account exists
	for _, email := range []string{"rep@acacia.test", "ghost@acacia.test"} {
		w := doJSON(t, r, http.MethodPost, "/api/auth/forgot-password",
			dto.ForgotPasswordRequest{Email: email})
		require.Equal(t, http.StatusOK, w.Code)
	}

	// fetch the issued token straight from the store
	resets, err := env.store.ListPasswordResets(t.Context(), user.ID)
	require.NoError(t, err)
	require.Len(t, resets, 1)
	token := resets[0].Token

	w := doJSON(t, r, http.MethodPost, "/api/auth/reset-password",
		dto.ResetPasswordRequest{Token: token, NewPassword: "brand-new-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// old password rejected, new one accepted, token single-use
	w = doJSON(t, r, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Email: "rep@acacia.test", Password: "old-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/auth/login",
		dto.LoginRequest{Email: "rep@acacia.test", Password: "brand-new-pass"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/auth/reset-password",
		dto.ResetPasswordRequest{Token: token, NewPassword: "another-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
