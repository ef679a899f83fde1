package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/apiserver/middleware"
	"github.com/staylinehq/stayline/internal/auth/jwt"
	"github.com/staylinehq/stayline/internal/common/apierr"
	"github.com/staylinehq/stayline/internal/common/config"
	"github.com/staylinehq/stayline/internal/common/dto"
)

// Handler carries the shared dependencies of all route handlers
type Handler struct {
	db         database.Database
	jwtService *jwt.Service
	cfg        *config.APIServerConfig
	logger     *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(db database.Database, jwtService *jwt.Service, cfg *config.APIServerConfig, logger *zap.Logger) *Handler {
	return &Handler{
		db:         db,
		jwtService: jwtService,
		cfg:        cfg,
		logger:     logger,
	}
}

// principal returns the authenticated principal or aborts with 401
func (h *Handler) principal(c *gin.Context) (*dto.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		apierr.Abort(c, apierr.Unauthorized("auth_required", "authentication required"))
		return nil, false
	}
	return p, true
}

// pathID parses the numeric :id path parameter
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		apierr.Respond(c, apierr.BadRequest("invalid_id", "invalid id"))
		return 0, false
	}
	return uint(id), true
}

// canAccessHotel reports whether the principal may touch records of the
// given hotel. SYSTEM_ADMIN users pass every scope check.
func canAccessHotel(p *dto.Principal, hotelID uint) bool {
	if p.Role == database.RoleSystemAdmin {
		return true
	}
	return p.HotelID != nil && *p.HotelID == hotelID
}

// forbidHotel is the uniform cross-hotel rejection
func forbidHotel(c *gin.Context) {
	apierr.Respond(c, apierr.Forbidden("hotel_scope", "record belongs to another hotel"))
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads page/page_size query parameters with sane bounds
func pageParams(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
