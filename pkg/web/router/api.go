package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"account-service/pkg/common/config"
	"account-service/pkg/core/user/service"
	"account-service/pkg/web/handler"
	"account-service/pkg/web/middleware"
	"account-service/pkg/web/static"
)

// Dependencies are the services the routes are wired to. Nothing here is
// global; main builds them once at startup.
type Dependencies struct {
	Users        service.UserService
	Tokens       middleware.TokenVerifier
	HealthProbes []handler.HealthProbe
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *middleware.TokenBucket
}

// RegisterAPIs registers middleware and every route on h.
func RegisterAPIs(h *server.Hertz, cfg *config.Config, deps Dependencies) {
	healthHandler := handler.NewHealthCheckHandler(deps.HealthProbes...)
	userHandler := handler.NewUserHandler(deps.Users)

	// global middleware, in execution order
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.RequestIDMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
	)
	if deps.RateLimiter != nil {
		h.Use(middleware.RateLimitMiddleware(deps.RateLimiter))
	}

	h.GET("/health", healthHandler.AdvancedHealthCheck)

	// pages
	h.GET("/", static.Page("index.html"))
	h.GET("/register", static.Page("register.html"))
	h.GET("/login", static.Page("login.html"))
	h.POST("/login", userHandler.Login)

	apiGroup := h.Group("/api/v1")
	{
		userGroup := apiGroup.Group("/users")
		{
			userGroup.POST("", userHandler.Register)
			userGroup.GET("", userHandler.List)
			userGroup.GET("/:id", userHandler.Get)
			userGroup.PUT("/:id", userHandler.Update)
			userGroup.DELETE("/:id", userHandler.Delete)
		}

		// routes requiring a token
		protectedGroup := apiGroup.Group("/protected", middleware.AuthMiddleware(deps.Tokens))
		{
			protectedGroup.GET("/users", userHandler.List)
		}
	}
}
