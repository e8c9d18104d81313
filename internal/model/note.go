package model

import (
	"strings"
	"time"
)

// DefaultTag is assigned to notes created or updated without a tag.
const DefaultTag = "General"

// Note mirrors the `notes` table. UserID is the owner and never changes
// after creation.
type Note struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	CreatedAt   time.Time `json:"date"`
}

// NotePatch is a partial update. A nil field leaves the stored value
// unchanged; a present field replaces it.
type NotePatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Tag         *string `json:"tag"`
}

// Empty reports whether the patch carries no fields at all.
func (p NotePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Tag == nil
}

// Apply returns a copy of n with the present patch fields merged in.
// Values are trimmed and a blank tag falls back to DefaultTag. ID, owner
// and creation date are preserved.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		n.Description = strings.TrimSpace(*p.Description)
	}
	if p.Tag != nil {
		n.Tag = NormalizeTag(*p.Tag)
	}
	return n
}

// NormalizeTag trims the tag and substitutes DefaultTag for blanks.
func NormalizeTag(tag string) string {
	if tag = strings.TrimSpace(tag); tag == "" {
		return DefaultTag
	}
	return tag
}
