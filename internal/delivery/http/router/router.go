// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"identity/internal/delivery/http/middleware"
	"identity/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AccountHandler    *handler.AccountHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler    *handler.AccountHandler
	sessionMiddleware *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler:    params.AccountHandler,
		sessionMiddleware: params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	authGroup := e.Group("/api/auth")
	{
		authGroup.POST("/signup", r.accountHandler.Signup)
		authGroup.POST("/login", r.accountHandler.Login)
		authGroup.GET("/verify", r.accountHandler.Verify)
		authGroup.POST("/resend-verification", r.accountHandler.ResendVerification)
		authGroup.POST("/send-reset-email", r.accountHandler.SendResetEmail)
		authGroup.POST("/reset-password", r.accountHandler.ResetPassword)
	}

	// Profile routes require a valid session token.
	userGroup := e.Group("/api/auth/user")
	userGroup.Use(r.sessionMiddleware.Authenticate)
	{
		userGroup.GET("", r.accountHandler.GetByEmail)
		userGroup.GET("/:id", r.accountHandler.GetByID)
		userGroup.PATCH("/:id", r.accountHandler.UpdateDetails)
	}
}
