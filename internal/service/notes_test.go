package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/notebook-api/internal/auth"
	"github.com/iliyamo/notebook-api/internal/model"
	"github.com/iliyamo/notebook-api/internal/queue"
)

func strPtr(s string) *string { return &s }

type noteFixture struct {
	svc    *NoteService
	store  *memNotes
	cache  *mapCache
	events *spyPublisher
}

func newNoteFixture() noteFixture {
	store := newMemNotes()
	cache := newMapCache()
	events := &spyPublisher{}
	return noteFixture{
		svc:    NewNoteService(store, cache, events, discardLogger()),
		store:  store,
		cache:  cache,
		events: events,
	}
}

func TestCreateNote(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()

	n, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: " t ", Description: "d"})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "u1", n.UserID)
	assert.Equal(t, "t", n.Title)
	assert.Equal(t, model.DefaultTag, n.Tag)
	assert.False(t, n.CreatedAt.IsZero())

	stored, err := f.store.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored)
	assert.Equal(t, []string{queue.NoteCreated}, f.events.types())
	assert.Equal(t, []string{"u1"}, f.cache.invalidated)
}

func TestCreateNote_Validation(t *testing.T) {
	f := newNoteFixture()

	_, err := f.svc.CreateNote(context.Background(), "u1", NoteInput{Title: "", Description: "  "})
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []FieldError{
		{Field: "title", Message: "Insert title"},
		{Field: "description", Message: "Insert description"},
	}, verr.Fields)
	assert.Zero(t, f.store.callCount())
}

func TestCreateNote_StoreFault(t *testing.T) {
	f := newNoteFixture()
	f.store.failWrite = errStore

	_, err := f.svc.CreateNote(context.Background(), "u1", NoteInput{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, f.events.types())
}

func TestListNotes_OnlyOwners(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	a, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "a", Description: "a"})
	require.NoError(t, err)
	_, err = f.svc.CreateNote(ctx, "u2", NoteInput{Title: "b", Description: "b"})
	require.NoError(t, err)

	notes, err := f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []model.Note{a}, notes)

	notes, err = f.svc.ListNotes(ctx, "u3")
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)
}

func TestListNotes_CacheAside(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	_, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "a", Description: "a"})
	require.NoError(t, err)

	_, err = f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	calls := f.store.callCount()

	// second read is served from the cache
	notes, err := f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
	assert.Equal(t, calls, f.store.callCount())

	// a write invalidates
	_, err = f.svc.CreateNote(ctx, "u1", NoteInput{Title: "b", Description: "b"})
	require.NoError(t, err)
	notes, err = f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestListNotes_WriteDuringFillNotLost(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()

	// the owner creates a note while their listing is between the store
	// read and the cache fill
	f.store.afterList = func() {
		_, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "late", Description: "x"})
		require.NoError(t, err)
	}
	notes, err := f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, notes)

	notes, err = f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "late", notes[0].Title)
}

func TestListNotes_DeleteDuringFillNotServed(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	n, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "a", Description: "a"})
	require.NoError(t, err)

	f.store.afterList = func() {
		_, err := f.svc.DeleteNote(ctx, "u1", n.ID)
		require.NoError(t, err)
	}
	notes, err := f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	notes, err = f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestListNotes_CacheFaultBypassed(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	_, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "a", Description: "a"})
	require.NoError(t, err)
	f.cache.err = errors.New("redis down")

	notes, err := f.svc.ListNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestUpdateNote_TagOnlyKeepsOtherFields(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	n, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	got, err := f.svc.UpdateNote(ctx, "u1", n.ID, model.NotePatch{Tag: strPtr("work")})
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "d", got.Description)
	assert.Equal(t, "work", got.Tag)
	assert.Equal(t, n.CreatedAt, got.CreatedAt)

	stored, err := f.store.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)
}

func TestUpdateNote_Errors(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	n, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		owner  string
		noteID string
		patch  model.NotePatch
		want   error
	}{
		{"missing note", "u1", "nope", model.NotePatch{Title: strPtr("x")}, ErrNotFound},
		{"non-owner valid patch", "u2", n.ID, model.NotePatch{Title: strPtr("x")}, ErrForbidden},
		{"non-owner invalid patch", "u2", n.ID, model.NotePatch{Title: strPtr("")}, ErrForbidden},
		{"owner blank title", "u1", n.ID, model.NotePatch{Title: strPtr(" ")}, ErrValidation},
		{"owner blank description", "u1", n.ID, model.NotePatch{Description: strPtr("")}, ErrValidation},
		{"no identity", "", n.ID, model.NotePatch{Title: strPtr("x")}, ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateNote(ctx, tt.owner, tt.noteID, tt.patch)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	stored, err := f.store.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored)
}

func TestDeleteNote(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	n, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "t", Description: "d"})
	require.NoError(t, err)

	_, err = f.svc.DeleteNote(ctx, "u2", n.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	deleted, err := f.svc.DeleteNote(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, deleted)

	_, err = f.svc.DeleteNote(ctx, "u1", n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{queue.NoteCreated, queue.NoteDeleted}, f.events.types())
}

func TestDeleteNote_StoreFault(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	n, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	f.store.failWrite = errStore

	_, err = f.svc.DeleteNote(ctx, "u1", n.ID)
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, errStore)
}

func TestGetNote(t *testing.T) {
	f := newNoteFixture()
	ctx := context.Background()
	n, err := f.svc.CreateNote(ctx, "u1", NoteInput{Title: "t", Description: "d", Tag: "home"})
	require.NoError(t, err)

	got, err := f.svc.GetNote(ctx, "u1", n.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got)

	_, err = f.svc.GetNote(ctx, "u2", n.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

// register, create, foreign update, delete, then update a deleted note
func TestNoteOwnershipScenario(t *testing.T) {
	ctx := context.Background()
	tokens, err := auth.NewTokenService("scenario-secret", time.Hour)
	require.NoError(t, err)
	accounts := NewAccountService(newMemUsers(), auth.NewHasher(bcrypt.MinCost), tokens, nil, discardLogger())
	notes := NewNoteService(newMemNotes(), nil, nil, discardLogger())

	t1, err := accounts.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "abcde"})
	require.NoError(t, err)
	_, err = accounts.Register(ctx, RegisterInput{Name: "B", Email: "b@x.com", Password: "fghij"})
	require.NoError(t, err)
	t2, err := accounts.Login(ctx, LoginInput{Email: "b@x.com", Password: "fghij"})
	require.NoError(t, err)

	u1, err := tokens.Verify(t1)
	require.NoError(t, err)
	u2, err := tokens.Verify(t2)
	require.NoError(t, err)
	require.NotEqual(t, u1, u2)

	n, err := notes.CreateNote(ctx, u1, NoteInput{Title: "t", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, "General", n.Tag)

	_, err = notes.UpdateNote(ctx, u2, n.ID, model.NotePatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = notes.DeleteNote(ctx, u1, n.ID)
	require.NoError(t, err)

	_, err = notes.UpdateNote(ctx, u1, n.ID, model.NotePatch{Title: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}
