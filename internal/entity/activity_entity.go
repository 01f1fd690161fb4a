package entity

import (
	"time"

	"github.com/google/uuid"
)

// Activity is an append-only audit record of a note lifecycle event.
type Activity struct {
	Id         uuid.UUID
	EventType  string
	NoteId     uuid.UUID
	UserId     uuid.UUID
	Detail     string
	OccurredAt time.Time
	CreatedAt  time.Time
}
