package specification

import (
	"gorm.io/gorm"
)

// PublicOnly keeps notes flagged for the public portfolio view.
type PublicOnly struct{}

func (s PublicOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_public = ?", true)
}

// ByVisibility filters on the is_public flag explicitly.
type ByVisibility struct {
	IsPublic bool
}

func (s ByVisibility) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_public = ?", s.IsPublic)
}

type ByTitle struct {
	Title string
}

func (s ByTitle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}
