package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/notebook-api/internal/middleware"
	"github.com/iliyamo/notebook-api/internal/model"
	"github.com/iliyamo/notebook-api/internal/service"
)

// Notes is the note use case surface; *service.NoteService satisfies it.
type Notes interface {
	ListNotes(ctx context.Context, ownerID string) ([]model.Note, error)
	CreateNote(ctx context.Context, ownerID string, in service.NoteInput) (model.Note, error)
	GetNote(ctx context.Context, ownerID, noteID string) (model.Note, error)
	UpdateNote(ctx context.Context, ownerID, noteID string, patch model.NotePatch) (model.Note, error)
	DeleteNote(ctx context.Context, ownerID, noteID string) (model.Note, error)
}

// NoteHandler serves the authenticated note endpoints. The owner always
// comes from the request context set by RequireToken.
type NoteHandler struct {
	notes Notes
	log   *slog.Logger
}

// NewNoteHandler returns a handler backed by notes.
func NewNoteHandler(notes Notes, log *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, log: log}
}

// owner is the authenticated user id; empty when the gate was skipped.
func owner(c echo.Context) string {
	uid, _ := middleware.UserID(c.Request().Context())
	return uid
}

// List returns the caller's notes in creation order.
func (h *NoteHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	notes, err := h.notes.ListNotes(ctx, owner(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, notes)
}

// Create stores a note for the caller. Any owner field in the body is
// ignored.
func (h *NoteHandler) Create(c echo.Context) error {
	var req service.NoteInput
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.notes.CreateNote(ctx, owner(c), req)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, n)
}

// Get returns one of the caller's notes.
func (h *NoteHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.notes.GetNote(ctx, owner(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, n)
}

// Update applies a partial update; absent fields keep their values. A body
// that does not decode is still answered 404 or 403 when the note is
// missing or foreign.
func (h *NoteHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var patch model.NotePatch
	if err := c.Bind(&patch); err != nil {
		if _, err := h.notes.GetNote(ctx, owner(c), c.Param("id")); err != nil {
			return writeError(c, h.log, err)
		}
		return badBody(c)
	}

	n, err := h.notes.UpdateNote(ctx, owner(c), c.Param("id"), patch)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, n)
}

// Delete removes one of the caller's notes and echoes it back.
func (h *NoteHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.notes.DeleteNote(ctx, owner(c), c.Param("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": "Note has been deleted", "note": n})
}
