// Package service holds the account and note use cases. Every failure
// returned from this package is one of the sentinels below (possibly
// wrapped), so the HTTP layer can map it with errors.Is.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/notebook-api/internal/auth"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("sorry a user with this email already exists")
	ErrInvalidCredentials = errors.New("please try to login with correct credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidToken       = auth.ErrInvalidToken
	ErrForbidden          = errors.New("not allowed")
	ErrNotFound           = errors.New("not found")
	ErrInternal           = errors.New("internal server error")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

// ValidationError lists every rejected field of a request. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// Error lists the failing fields.
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Is reports ErrValidation so callers can match with errors.Is.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// internal wraps a storage or crypto fault. The cause stays in the chain
// for logging but is never shown to clients.
func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}
