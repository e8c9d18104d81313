package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/notebook-api/internal/database"
	"github.com/iliyamo/notebook-api/internal/model"
)

// NoteRepo encapsulates all queries on the notes table. Writes are always
// scoped by owner so a stale ownership check cannot touch another user's
// row.
type NoteRepo struct {
	db *database.DB
}

// NewNoteRepo returns a NoteRepo over db.
func NewNoteRepo(db *database.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

const noteColumns = "id, user_id, title, description, tag, created_at"

// ListByOwner returns every note owned by ownerID, oldest first. A user
// with no notes gets an empty, non-nil slice.
func (r *NoteRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		r.db.Dialect.Rebind("SELECT "+noteColumns+" FROM notes WHERE user_id=? ORDER BY created_at, id"),
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

// Create inserts n as given; the caller assigns ID and CreatedAt.
func (r *NoteRepo) Create(ctx context.Context, n *model.Note) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind("INSERT INTO notes ("+noteColumns+") VALUES (?,?,?,?,?,?)"),
		n.ID, n.UserID, n.Title, n.Description, n.Tag, n.CreatedAt)
	return err
}

// GetByID fetches a note regardless of owner. Ownership is decided by the
// caller so it can tell a missing note from a foreign one.
func (r *NoteRepo) GetByID(ctx context.Context, id string) (model.Note, error) {
	row := r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind("SELECT "+noteColumns+" FROM notes WHERE id=? LIMIT 1"),
		id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Note{}, ErrNotFound
	}
	return n, err
}

// Update rewrites the mutable fields of n. Zero affected rows means the
// note vanished or changed hands since it was read.
func (r *NoteRepo) Update(ctx context.Context, n model.Note) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind("UPDATE notes SET title=?, description=?, tag=? WHERE id=? AND user_id=?"),
		n.Title, n.Description, n.Tag, n.ID, n.UserID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// Delete removes the note only if ownerID still owns it.
func (r *NoteRepo) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind("DELETE FROM notes WHERE id=? AND user_id=?"),
		id, ownerID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (model.Note, error) {
	var n model.Note
	if err := s.Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.Tag, &n.CreatedAt); err != nil {
		return model.Note{}, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}
