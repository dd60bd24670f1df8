package models

import (
	"time"

	"github.com/google/uuid"
)

// BusAssignment links one student to one bus. StudentID is unique, so a
// student rides at most one bus.
type BusAssignment struct {
	Base
	StudentID  uuid.UUID  `json:"student_id" gorm:"type:uuid;uniqueIndex;not null"`
	BusID      uuid.UUID  `json:"bus_id" gorm:"type:uuid;index;not null"`
	AssignedBy *uuid.UUID `json:"assigned_by" gorm:"type:uuid"`
	AssignedAt time.Time  `json:"assigned_at" gorm:"not null;index"`

	Student Profile `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE;"`
	Bus     Bus     `json:"-" gorm:"foreignKey:BusID;constraint:OnDelete:RESTRICT;"`
}
