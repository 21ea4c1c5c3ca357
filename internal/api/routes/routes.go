// Package routes handles the setup and configuration of API routes
package routes

import (
	_ "contentdesk/docs" // Import swagger docs
	"contentdesk/internal/api/handlers"
	"contentdesk/internal/api/middleware"
	"contentdesk/internal/config"
	"contentdesk/internal/repository"
	"contentdesk/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Dependencies are the wired components the routes are served from
type Dependencies struct {
	Config   *config.Config
	Services *service.Services
	Users    repository.UserRepository
	Throttle *middleware.IPThrottle
	// Health lists the stores pinged by /health, keyed by name
	Health map[string]handlers.Pinger
	Logger *zap.Logger
}

// SetupRoutes configures all API routes and their handlers
func SetupRoutes(deps Dependencies) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// Create router
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	// Routes without rate limiting
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Apply rate limiting to all other routes
	if deps.Throttle != nil {
		r.Use(deps.Throttle.Middleware())
	}

	secureCookie := deps.Config.IsProduction()

	// Initialize middleware
	sessionMiddleware := middleware.NewSessionMiddleware(deps.Services.Tokens, deps.Users, log)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.Health)
	authHandler := handlers.NewAuthHandler(deps.Services.Login, deps.Services.Account, secureCookie, log)
	passwordHandler := handlers.NewPasswordHandler(deps.Services.Recovery, deps.Services.Account, log)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Health check (no authentication required)
		v1.GET("/health", healthHandler.Health)

		// Auth routes
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify", authHandler.Verify)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", sessionMiddleware.SessionRequired(), authHandler.Me)

			auth.POST("/forgot-password", passwordHandler.ForgotPassword)
			auth.POST("/forgot-password/resend", passwordHandler.ResendCode)
			auth.POST("/forgot-password/verify", passwordHandler.VerifyResetCode)
			auth.POST("/forgot-password/reset", passwordHandler.ResetPassword)
			auth.POST("/change-password", sessionMiddleware.SessionRequired(), passwordHandler.ChangePassword)
		}
	}

	return r
}
