package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notebook-api/internal/handler"
)

// RegisterNotes mounts the note CRUD endpoints. Every route runs the gate
// first, so nothing below it executes for an unauthenticated request.
func RegisterNotes(e *echo.Echo, n *handler.NoteHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/notes", gate)
	g.GET("", n.List)
	g.POST("", n.Create)
	g.GET("/:id", n.Get)
	g.PUT("/:id", n.Update)
	g.DELETE("/:id", n.Delete)
}
