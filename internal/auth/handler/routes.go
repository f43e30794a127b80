package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/chris743/db-api/pkg/constant"
)

func RegisterRoutes(app *fiber.App, authHandler *AuthHandler, userHandler *UserHandler, mw *AuthMiddleware) {
	app.Use(mw.Authenticate())

	auth := app.Group("/api/v1/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Get("/verify", mw.RequireAuth(), authHandler.Verify)
	auth.Post("/change-password", mw.RequireAuth(), authHandler.ChangePassword)
	auth.Post("/sessions/bind", mw.RequireRole(constant.RoleAdmin), authHandler.BindSessionKey)

	// Admin-only user management
	users := app.Group("/api/v1/users", mw.RequireRole(constant.RoleAdmin))
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
	users.Post("/:id/reset-password", userHandler.ResetPassword)
	users.Get("/:id/sessions", userHandler.GetUserSessions)
	users.Delete("/:id/sessions", userHandler.ForceLogout)
}
