package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/auth/jwt"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/dto"
)

const principalKey = "principal"

// PrincipalFromContext returns the authenticated principal attached by AuthRequired.
func PrincipalFromContext(c *gin.Context) (*dto.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*dto.Principal)
	return p, ok
}

// extractToken pulls the JWT from the Authorization header, falling back to
// the "token" cookie set at login.
func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// AuthRequired validates the request token, loads the account behind it and
// stores a Principal in the context. Tokens for deactivated or deleted
// accounts are rejected even when still cryptographically valid.
func AuthRequired(jwtService *jwt.Service, db database.Database, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			apierr.Abort(c, apierr.Unauthorized("auth_required", "authentication required"))
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			apierr.Abort(c, apierr.Unauthorized("invalid_token", "invalid or expired token"))
			return
		}

		user, err := db.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Debug("token refers to unknown user",
				zap.Uint("user_id", claims.UserID),
				zap.Error(err))
			apierr.Abort(c, apierr.Unauthorized("invalid_token", "invalid or expired token"))
			return
		}
		if !user.IsActive {
			apierr.Abort(c, apierr.Unauthorized("account_deactivated", "account is deactivated"))
			return
		}

		c.Set(principalKey, &dto.Principal{
			ID:      user.ID,
			Email:   user.Email,
			Role:    user.Role,
			HotelID: user.HotelID,
		})
		c.Next()
	}
}

// RequireRoles allows the request through only when the principal's role is
// in the given allow-list. Must run after AuthRequired.
func RequireRoles(roles ...database.UserRole) gin.HandlerFunc {
	allowed := make(map[database.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			apierr.Abort(c, apierr.Unauthorized("auth_required", "authentication required"))
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			apierr.Abort(c, apierr.Forbidden("insufficient_role", "insufficient role for this operation"))
			return
		}
		c.Next()
	}
}

// RequireElevated admits only the roles allowed to delete inquiries and
// quotations. Must run after AuthRequired.
func RequireElevated() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			apierr.Abort(c, apierr.Unauthorized("auth_required", "authentication required"))
			return
		}
		if !p.Role.Elevated() {
			apierr.Abort(c, apierr.Forbidden("insufficient_role", "insufficient role for this operation"))
			return
		}
		c.Next()
	}
}
