package models

import (
	"time"

	"github.com/google/uuid"
)

// WhitelistedUser pre-authorizes an email for self-registration with a fixed
// name and role.
type WhitelistedUser struct {
	Base
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"not null"`
	Role         Role       `json:"role" gorm:"type:varchar(16);not null;default:'student'"`
	AddedBy      uuid.UUID  `json:"added_by" gorm:"type:uuid;not null"`
	AddedAt      time.Time  `json:"added_at" gorm:"autoCreateTime;index"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
	IsRegistered bool       `json:"is_registered" gorm:"not null;default:false"`
	RegisteredAt *time.Time `json:"registered_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (WhitelistedUser) TableName() string { return "whitelisted_users" }
