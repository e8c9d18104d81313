// Package repository defines error types that are reused across the
// user and note repositories. These sentinel values allow the service
// layer to distinguish between failure scenarios without inspecting
// driver errors.
package repository

import "errors"

// ErrNotFound is returned when no row matches the lookup. For owner
// scoped writes it also covers rows that exist but belong to someone
// else, since the WHERE clause matches neither.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user whose normalized email
// is already taken.
var ErrEmailExists = errors.New("email already exists")
