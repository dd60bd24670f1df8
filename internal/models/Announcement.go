package models

import (
	"time"

	"github.com/google/uuid"
)

type Announcement struct {
	Base
	Title     string    `json:"title" gorm:"not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`

	Author Profile `json:"-" gorm:"foreignKey:CreatedBy"`
}
