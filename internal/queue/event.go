// Package queue defines the note domain events exchanged over RabbitMQ,
// the publisher used by the services and the audit consumer.
package queue

import "time"

// Event types
const (
	UserRegistered = "user.registered"
	NoteCreated    = "note.created"
	NoteUpdated    = "note.updated"
	NoteDeleted    = "note.deleted"
)

// Event is published after a successful write. It carries enough for
// downstream consumers to log or notify without querying the database;
// note bodies are deliberately left out.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	NoteID     string    `json:"note_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Tag        string    `json:"tag,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
