package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "docanalyzer/docs" // registers the OpenAPI description
	"docanalyzer/internal/domain"
	"docanalyzer/internal/handler"
	"docanalyzer/internal/middleware"
	"docanalyzer/internal/port"
	"docanalyzer/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Order    *handler.OrderHandler
	Document *handler.DocumentHandler
	Analysis *handler.AnalysisHandler
	Payment  *handler.PaymentHandler
	Stats    *handler.StatsHandler
	Health   *handler.HealthHandler
}

// Options holds router-level settings.
type Options struct {
	AllowedOrigins []string
	SwaggerEnabled bool
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(authSvc service.AuthService, userRepo port.UserRepository, h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.Language())

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	if opts.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)
	auth.GET("/verify-email", h.Auth.VerifyEmail)
	auth.POST("/forgot-password", h.Auth.ForgotPassword)
	auth.POST("/reset-password", h.Auth.ResetPassword)

	v1.GET("/pricing", h.Order.Pricing)
	v1.POST("/webhooks/stripe", h.Payment.StripeWebhook)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.POST("/auth/resend-verification", h.Auth.ResendVerification)
	protected.GET("/users/me", h.User.Me)
	protected.PUT("/users/me", h.User.UpdateMe)
	protected.GET("/stats", h.Stats.GetStats)

	// Reads stay open to unverified accounts; anything that creates work or
	// moves money requires a verified email.
	verified := middleware.RequireEmailVerified(userRepo)

	orders := protected.Group("/orders")
	orders.GET("", h.Order.List)
	orders.POST("", verified, h.Order.Create)
	orders.GET("/:id", h.Order.GetByID)
	orders.PUT("/:id", verified, h.Order.Update)
	orders.DELETE("/:id", h.Order.Cancel)
	orders.GET("/:id/history", h.Order.History)
	orders.POST("/:id/payment-intent", verified, h.Payment.CreateIntent)
	orders.GET("/:id/documents", h.Document.ListByOrder)
	orders.POST("/:id/upload", verified, h.Document.Upload)
	orders.POST("/:id/analysis", verified, h.Analysis.Request)
	orders.GET("/:id/analysis", h.Analysis.ListByOrder)
	orders.GET("/:id/analysis/export", h.Analysis.Export)

	documents := protected.Group("/documents")
	documents.GET("/:id", h.Document.GetByID)
	documents.DELETE("/:id", h.Document.Delete)

	analyses := protected.Group("/analyses")
	analyses.GET("/:id", h.Analysis.GetByID)
	analyses.POST("/:id/retry", verified, h.Analysis.Retry)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.GET("/users", h.User.List)

	return r
}
