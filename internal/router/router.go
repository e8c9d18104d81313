package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/notebook-api/internal/handler"
	"github.com/iliyamo/notebook-api/internal/middleware"
)

// Handlers groups everything the routes dispatch to. Gate is the
// RequireToken middleware guarding every authenticated route.
type Handlers struct {
	Health *handler.HealthHandler
	Auth   *handler.AuthHandler
	Notes  *handler.NoteHandler
	Gate   echo.MiddlewareFunc
}

// New builds the Echo instance with the shared middleware stack and all
// routes registered.
func New(h Handlers, corsOrigins []string, authHeader string, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, authHeader},
	}))

	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, h.Gate)
	RegisterNotes(e, h.Notes, h.Gate)
	RegisterLegacy(e, h, h.Gate)
	return e
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler) {
	e.GET("/healthz", health.Health)
}

// RegisterAuth registers the account endpoints. Register and login are
// open; /auth/me requires a valid token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/me", a.Me, gate)
}
