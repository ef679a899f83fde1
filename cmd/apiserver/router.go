package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/apiserver/handler"
	"github.com/staylinehq/stayline/internal/apiserver/middleware"
	"github.com/staylinehq/stayline/internal/auth/jwt"
	"github.com/staylinehq/stayline/internal/common/config"
	"github.com/staylinehq/stayline/pkg/metrics"
	"github.com/staylinehq/stayline/pkg/version"
)

func buildRouter(h *handler.Handler, db database.Database, jwtService *jwt.Service, m *metrics.Metrics, cfg *config.APIServerConfig, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	if len(cfg.CORS.AllowOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
		corsCfg.AllowCredentials = cfg.CORS.AllowCredentials
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", middleware.IdempotencyHeader)
		r.Use(cors.New(corsCfg))
	}
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Get()})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", middleware.LoginRateLimiter(cfg.RateLimit), h.Login)
		auth.GET("/logout", h.Logout)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(jwtService, db, logger))
	api.Use(middleware.Idempotency(db, logger))

	api.GET("/auth/verify", h.Verify)

	hotels := api.Group("/hotels")
	{
		hotels.GET("", h.ListHotels)
		hotels.GET("/:id", h.GetHotel)
		hotels.POST("", middleware.RequireRoles(database.RoleSystemAdmin), h.CreateHotel)
		hotels.PUT("/:id", middleware.RequireRoles(database.RoleSystemAdmin, database.RoleHotelAdmin), h.UpdateHotel)
		hotels.PUT("/:id/branding", middleware.RequireRoles(database.RoleSystemAdmin, database.RoleHotelAdmin), h.UpdateHotelBranding)
		hotels.PUT("/:id/tax-settings", middleware.RequireRoles(database.RoleSystemAdmin, database.RoleHotelAdmin), h.UpdateHotelTaxSettings)
		hotels.DELETE("/:id", middleware.RequireRoles(database.RoleSystemAdmin), h.DeleteHotel)
	}

	adminRoles := middleware.RequireRoles(database.RoleSystemAdmin, database.RoleHotelAdmin)
	users := api.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("", adminRoles, h.CreateUser)
		users.PUT("/:id", adminRoles, h.UpdateUser)
		users.DELETE("/:id", adminRoles, h.DeleteUser)
	}

	elevated := middleware.RequireElevated()
	inquiries := api.Group("/inquiries")
	{
		inquiries.GET("", h.ListInquiries)
		inquiries.GET("/:id", h.GetInquiry)
		inquiries.POST("", h.CreateInquiry)
		inquiries.PUT("/:id", h.UpdateInquiry)
		inquiries.PUT("/:id/status", h.UpdateInquiryStatus)
		inquiries.PUT("/:id/assign", h.AssignInquiry)
		inquiries.POST("/:id/notes", h.AddInquiryNote)
		inquiries.DELETE("/:id", elevated, h.DeleteInquiry)
	}

	clients := api.Group("/clients")
	{
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
	}

	quotations := api.Group("/quotations")
	{
		quotations.GET("", h.ListQuotations)
		quotations.GET("/:id", h.GetQuotation)
		quotations.POST("", h.CreateQuotation)
		quotations.PUT("/:id", h.UpdateQuotation)
		quotations.POST("/:id/send", h.SendQuotation)
		quotations.PUT("/:id/status", h.UpdateQuotationStatus)
		quotations.POST("/:id/notes", h.AddQuotationNote)
		quotations.DELETE("/:id", elevated, h.DeleteQuotation)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.GET("/:id", h.GetNotification)
		notifications.POST("", adminRoles, h.CreateNotification)
		notifications.PUT("/:id/read", h.MarkNotificationRead)
		notifications.PUT("/mark-all-read", h.MarkAllNotificationsRead)
		notifications.DELETE("/:id", h.DeleteNotification)
	}

	return r
}
