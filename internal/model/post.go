package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a published article. The author reference is set at
// creation and never reassigned; only the author may update or delete the
// post. Slug is derived from the title and kept unique.
type Post struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Title     string    `json:"title" gorm:"size:200;not null" validate:"required,min=3,max=200"`
	Content   string    `json:"content" gorm:"type:text;not null" validate:"required,min=10"`
	Category  string    `json:"category" gorm:"size:100;not null;index" validate:"required"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:255;not null" validate:"required"`
	Published bool      `json:"published" gorm:"not null;default:false"`
	AuthorID  uuid.UUID `json:"authorId" gorm:"type:char(36);not null;index" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
