package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bug statuses.
const (
	BugStatusOpen       = "open"
	BugStatusInProgress = "in-progress"
	BugStatusResolved   = "resolved"
	BugStatusClosed     = "closed"
)

// Bug priorities.
const (
	BugPriorityLow      = "low"
	BugPriorityMedium   = "medium"
	BugPriorityHigh     = "high"
	BugPriorityCritical = "critical"
)

// Environment describes where a bug was observed.
type Environment struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Version string `json:"version"`
}

// Value implements driver.Valuer, storing the environment as a JSON column.
func (e Environment) Value() (driver.Value, error) {
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *Environment) Scan(src interface{}) error {
	if src == nil {
		*e = Environment{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, e)
	case string:
		return json.Unmarshal([]byte(v), e)
	default:
		return fmt.Errorf("unsupported environment column type %T", src)
	}
}

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported string list column type %T", src)
	}
}

// Bug represents a reported defect. The reporter reference is set at creation
// and never reassigned; only the reporter may update or delete the bug.
type Bug struct {
	ID               uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	Title            string      `json:"title" gorm:"size:200;not null" validate:"required,min=3,max=200"`
	Description      string      `json:"description" gorm:"type:text;not null" validate:"required,min=5"`
	Status           string      `json:"status" gorm:"size:20;not null;default:'open';index" validate:"required,oneof=open in-progress resolved closed"`
	Priority         string      `json:"priority" gorm:"size:20;not null;default:'medium';index" validate:"required,oneof=low medium high critical"`
	Project          string      `json:"project" gorm:"size:255;not null;default:'General'"`
	StepsToReproduce StringList  `json:"stepsToReproduce" gorm:"type:json"`
	Environment      Environment `json:"environment" gorm:"type:json"`
	ReporterID       uuid.UUID   `json:"reporterId" gorm:"type:char(36);not null;index" validate:"required"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`

	// Relations
	Reporter *User `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
}

// BeforeCreate sets UUID before creating the record.
func (b *Bug) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
