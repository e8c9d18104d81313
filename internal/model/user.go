package model

import "time"

// User represents an account record as stored in the `users` table.
// Email is stored lower-cased and is unique across all users. The hash
// is never serialized; handlers only ever expose ID, Name, Email and the
// creation date.
//
// Fields:
//
//	ID           – opaque UUID assigned at registration.
//	Name         – display name, non-empty.
//	Email        – normalized, unique email address.
//	PasswordHash – bcrypt digest of the password.
//	CreatedAt    – registration timestamp (UTC).
type User struct {
	ID           string    `json:"id"`    // users.id
	Name         string    `json:"name"`  // users.name
	Email        string    `json:"email"` // users.email
	PasswordHash string    `json:"-"`     // users.password_hash
	CreatedAt    time.Time `json:"date"`  // users.created_at
}
