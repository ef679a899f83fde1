package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	e := NotFound("quotation_not_found", "quotation not found")
	assert.Equal(t, "[quotation_not_found] quotation not found", e.Error())

	cause := errors.New("record not found")
	e = e.WithCause(cause)
	assert.Contains(t, e.Error(), "record not found")
	assert.ErrorIs(t, e, cause)
}

func TestInternalDoesNotLeakCause(t *testing.T) {
	e := Internal(errors.New("dial tcp 10.0.0.1:3306: connection refused"))

	body, err := json.Marshal(e)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "10.0.0.1")
	assert.Contains(t, string(body), "internal server error")
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api", func(c *gin.Context) {
		Respond(c, Forbidden("hotel_scope", "access to this hotel is not allowed").WithDetail("hotelId", 7))
	})
	r.GET("/boom", func(c *gin.Context) {
		Respond(c, errors.New("pq: password authentication failed"))
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "hotel_scope")
	assert.Contains(t, w.Body.String(), "hotelId")

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "authentication failed")
}
