package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkravchenko/blog-backend/internal/handlers"
	"github.com/mkravchenko/blog-backend/internal/middleware"
	"github.com/mkravchenko/blog-backend/internal/models"
)

type Deps struct {
	AuthHandler *handlers.AuthHandler
	AuthMW      *middleware.AuthMiddleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	auth := e.Group("/auth")

	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh-token", d.AuthHandler.RefreshToken)
	auth.POST("/logout", d.AuthHandler.Logout)

	private := auth.Group("")
	private.Use(d.AuthMW.RequireAuth)

	private.GET("/me", d.AuthHandler.Me)

	admin := auth.Group("/admin", d.AuthMW.RequireAuth, d.AuthMW.RequireRole(models.RoleAdmin))

	admin.GET("/users/:id/sessions", d.AuthHandler.UserSessions)
}
