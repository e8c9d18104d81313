package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/notebook-api/internal/model"
	"github.com/iliyamo/notebook-api/internal/queue"
	"github.com/iliyamo/notebook-api/internal/repository"
)

// NoteStore persists notes. Update and Delete are scoped by owner and
// return repository.ErrNotFound when no row matches.
type NoteStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error)
	Create(ctx context.Context, n *model.Note) error
	GetByID(ctx context.Context, id string) (model.Note, error)
	Update(ctx context.Context, n model.Note) error
	Delete(ctx context.Context, id, ownerID string) error
}

// NoteCache holds per-owner note listings keyed by a generation that
// Invalidate advances. A listing stored under an older generation is never
// returned for a newer one. A miss is (nil, false, nil).
type NoteCache interface {
	Generation(ctx context.Context, ownerID string) (int64, error)
	Get(ctx context.Context, ownerID string, gen int64) ([]model.Note, bool, error)
	Set(ctx context.Context, ownerID string, gen int64, notes []model.Note) error
	Invalidate(ctx context.Context, ownerID string) error
}

// NoteInput is the body of a create request. Any owner field a client
// sends is not part of it.
type NoteInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Tag         string `json:"tag"`
}

var noteMessages = map[string]string{
	"title":       "Insert title",
	"description": "Insert description",
}

// NoteService implements note CRUD for the authenticated owner.
type NoteService struct {
	notes  NoteStore
	cache  NoteCache
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewNoteService wires the store with optional cache and publisher; nil
// disables either.
func NewNoteService(notes NoteStore, cache NoteCache, events EventPublisher, log *slog.Logger) *NoteService {
	if cache == nil {
		cache = nopCache{}
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &NoteService{
		notes:  notes,
		cache:  cache,
		events: events,
		log:    log,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// ListNotes returns every note owned by ownerID.
func (s *NoteService) ListNotes(ctx context.Context, ownerID string) ([]model.Note, error) {
	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	// the generation is read before the store so a write racing this
	// listing moves the cache past whatever we fill below
	gen, err := s.cache.Generation(ctx, ownerID)
	cacheable := err == nil
	if err != nil {
		s.log.WarnContext(ctx, "note cache read failed", "user_id", ownerID, "error", err)
	} else if notes, ok, err := s.cache.Get(ctx, ownerID, gen); err != nil {
		s.log.WarnContext(ctx, "note cache read failed", "user_id", ownerID, "error", err)
	} else if ok {
		return notes, nil
	}

	notes, err := s.notes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, internal("list notes", err)
	}
	if notes == nil {
		notes = []model.Note{}
	}
	if cacheable {
		if err := s.cache.Set(ctx, ownerID, gen, notes); err != nil {
			s.log.WarnContext(ctx, "note cache write failed", "user_id", ownerID, "error", err)
		}
	}
	return notes, nil
}

// CreateNote stores a note owned by ownerID.
func (s *NoteService) CreateNote(ctx context.Context, ownerID string, in NoteInput) (model.Note, error) {
	if ownerID == "" {
		return model.Note{}, ErrUnauthenticated
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := check(in, noteMessages); err != nil {
		return model.Note{}, err
	}

	n := model.Note{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
		Tag:         model.NormalizeTag(in.Tag),
		CreatedAt:   s.now(),
	}
	if err := s.notes.Create(ctx, &n); err != nil {
		return model.Note{}, internal("create note", err)
	}
	s.changed(ctx, queue.NoteCreated, n)
	return n, nil
}

// GetNote returns the note if ownerID owns it. A missing note is
// ErrNotFound, a foreign one ErrForbidden.
func (s *NoteService) GetNote(ctx context.Context, ownerID, noteID string) (model.Note, error) {
	if ownerID == "" {
		return model.Note{}, ErrUnauthenticated
	}
	n, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Note{}, ErrNotFound
		}
		return model.Note{}, internal("get note", err)
	}
	if n.UserID != ownerID {
		return model.Note{}, ErrForbidden
	}
	return n, nil
}

// UpdateNote merges the present fields of patch into the owner's note.
// Ownership is checked before the patch is validated, so a non-owner is
// always refused with ErrForbidden.
func (s *NoteService) UpdateNote(ctx context.Context, ownerID, noteID string, patch model.NotePatch) (model.Note, error) {
	n, err := s.GetNote(ctx, ownerID, noteID)
	if err != nil {
		return model.Note{}, err
	}
	if err := validatePatch(patch); err != nil {
		return model.Note{}, err
	}
	if patch.Empty() {
		return n, nil
	}

	updated := patch.Apply(n)
	if err := s.notes.Update(ctx, updated); err != nil {
		// deleted between the lookup and the write
		if errors.Is(err, repository.ErrNotFound) {
			return model.Note{}, ErrNotFound
		}
		return model.Note{}, internal("update note", err)
	}
	s.changed(ctx, queue.NoteUpdated, updated)
	return updated, nil
}

// DeleteNote removes the owner's note and returns what was deleted.
func (s *NoteService) DeleteNote(ctx context.Context, ownerID, noteID string) (model.Note, error) {
	n, err := s.GetNote(ctx, ownerID, noteID)
	if err != nil {
		return model.Note{}, err
	}
	if err := s.notes.Delete(ctx, n.ID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Note{}, ErrNotFound
		}
		return model.Note{}, internal("delete note", err)
	}
	s.changed(ctx, queue.NoteDeleted, n)
	return n, nil
}

// changed drops the owner's cached listing and announces the write.
func (s *NoteService) changed(ctx context.Context, typ string, n model.Note) {
	if err := s.cache.Invalidate(ctx, n.UserID); err != nil {
		s.log.WarnContext(ctx, "note cache invalidate failed", "user_id", n.UserID, "error", err)
	}
	publish(ctx, s.events, s.log, queue.Event{
		Type:       typ,
		UserID:     n.UserID,
		NoteID:     n.ID,
		Title:      n.Title,
		Tag:        n.Tag,
		OccurredAt: s.now(),
	})
}

func validatePatch(p model.NotePatch) error {
	var fields []FieldError
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: noteMessages["title"]})
	}
	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		fields = append(fields, FieldError{Field: "description", Message: noteMessages["description"]})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

type nopCache struct{}

func (nopCache) Generation(context.Context, string) (int64, error)              { return 0, nil }
func (nopCache) Get(context.Context, string, int64) ([]model.Note, bool, error) { return nil, false, nil }
func (nopCache) Set(context.Context, string, int64, []model.Note) error         { return nil }
func (nopCache) Invalidate(context.Context, string) error                       { return nil }
