package router

import "github.com/labstack/echo/v4"

// RegisterLegacy keeps the /api paths older clients were built against.
// They dispatch to the same handlers as the current routes.
func RegisterLegacy(e *echo.Echo, h Handlers, gate echo.MiddlewareFunc) {
	a := e.Group("/api/auth")
	a.POST("/createuser", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/getuser", h.Auth.Me, gate)

	n := e.Group("/api/notes", gate)
	n.GET("/fetchallnotes", h.Notes.List)
	n.POST("/addnote", h.Notes.Create)
	n.PUT("/updatenote/:id", h.Notes.Update)
	n.DELETE("/deletenote/:id", h.Notes.Delete)
}
