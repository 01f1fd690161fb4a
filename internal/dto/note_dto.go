package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type UpdateNoteRequest struct {
	Id      uuid.UUID
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type SetVisibilityRequest struct {
	Id       uuid.UUID
	IsPublic bool `json:"is_public"`
}

// NoteResponse is the full note shape returned by every note read and by
// Create, so clients can prepend the created row without a second fetch.
type NoteResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	IsPublic  bool       `json:"is_public"`
	UserId    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// PublicNoteResponse omits the owner id; it is what anonymous callers see.
type PublicNoteResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type NoteEventMessage struct {
	EventType string    `json:"event_type"`
	NoteId    uuid.UUID `json:"note_id"`
	UserId    uuid.UUID `json:"user_id"`
	Detail    string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
