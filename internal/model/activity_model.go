package model

import (
	"time"

	"github.com/google/uuid"
)

type Activity struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType  string    `gorm:"type:varchar(100);not null;index"`
	NoteId     uuid.UUID `gorm:"type:uuid;index"`
	UserId     uuid.UUID `gorm:"type:uuid;index"`
	Detail     string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Activity) TableName() string {
	return "activities"
}
