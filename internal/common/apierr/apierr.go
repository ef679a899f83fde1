package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Category classifies errors for clients and log aggregation
type Category string

const (
	CategoryValidation     Category = "validation"
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryNotFound       Category = "not_found"
	CategoryConflict       Category = "conflict"
	CategoryRateLimit      Category = "rate_limit"
	CategoryInternal       Category = "internal"
)

// APIError is a structured, sanitized API error. Message is always safe to
// return to clients; internal causes stay in the wrapped error.
type APIError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Category   Category       `json:"category"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`

	cause error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the internal cause for errors.Is/As
func (e *APIError) Unwrap() error { return e.cause }

// WithDetail adds a client-visible detail to the error
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches an internal cause that is logged but never serialized
func (e *APIError) WithCause(err error) *APIError {
	e.cause = err
	return e
}

func newError(code, message string, category Category, status int) *APIError {
	return &APIError{Code: code, Message: message, Category: category, HTTPStatus: status}
}

func BadRequest(code, message string) *APIError {
	return newError(code, message, CategoryValidation, http.StatusBadRequest)
}

func Unauthorized(code, message string) *APIError {
	return newError(code, message, CategoryAuthentication, http.StatusUnauthorized)
}

func Forbidden(code, message string) *APIError {
	return newError(code, message, CategoryAuthorization, http.StatusForbidden)
}

func NotFound(code, message string) *APIError {
	return newError(code, message, CategoryNotFound, http.StatusNotFound)
}

func Conflict(code, message string) *APIError {
	return newError(code, message, CategoryConflict, http.StatusConflict)
}

func TooManyRequests(code, message string) *APIError {
	return newError(code, message, CategoryRateLimit, http.StatusTooManyRequests)
}

// Internal produces a sanitized 500; the cause is kept for logging only
func Internal(err error) *APIError {
	return newError("internal_error", "internal server error", CategoryInternal, http.StatusInternalServerError).WithCause(err)
}

// Respond writes an error response. Non-APIError values are wrapped as
// sanitized internal errors so raw driver or ORM messages never leak.
func Respond(c *gin.Context, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = Internal(err)
	}
	c.JSON(apiErr.HTTPStatus, gin.H{"error": apiErr})
}

// Abort writes an error response and aborts the middleware chain
func Abort(c *gin.Context, err error) {
	Respond(c, err)
	c.Abort()
}
