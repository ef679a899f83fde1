package middleware

import (
	"bytes"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
)

// IdempotencyHeader carries the client-chosen key for replay-safe mutations.
const IdempotencyHeader = "X-Idempotency-Key"

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// gin's string responses bypass Write, so mirror that path too
func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a previously seen
// X-Idempotency-Key instead of executing the mutation again. Keys are scoped
// to the authenticated user plus method and path, so a key reused on a
// different route is treated as a fresh request.
func Idempotency(db database.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		p, ok := PrincipalFromContext(c)
		if !ok {
			c.Next()
			return
		}

		stored, err := db.GetIdempotencyKey(c.Request.Context(), key)
		if err == nil && stored.UserID == p.ID && stored.Method == c.Request.Method && stored.Path == c.Request.URL.Path {
			c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
			c.Abort()
			return
		}
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		// Only successful outcomes are worth replaying; errors should be retried.
		if rec.Status() >= 200 && rec.Status() < 300 {
			record := &database.IdempotencyKey{
				Key:    key,
				UserID: p.ID,
				Method: c.Request.Method,
				Path:   c.Request.URL.Path,
				Status: rec.Status(),
				Body:   rec.buf.Bytes(),
			}
			if err := db.PutIdempotencyKey(c.Request.Context(), record); err != nil {
				logger.Warn("failed to store idempotency record", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
