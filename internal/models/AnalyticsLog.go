package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Analytics actions recorded by the API.
const (
	ActionSignIn             = "sign_in"
	ActionSignUp             = "sign_up"
	ActionBusCreated         = "bus_created"
	ActionBusUpdated         = "bus_updated"
	ActionBusDeleted         = "bus_deleted"
	ActionWhitelistAdded     = "whitelist_added"
	ActionWhitelistImported  = "whitelist_imported"
	ActionWhitelistToggled   = "whitelist_toggled"
	ActionStudentAssigned    = "student_assigned"
	ActionStudentUnassigned  = "student_unassigned"
	ActionAnnouncementPosted = "announcement_created"
)

type AnalyticsLog struct {
	Base
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Action    string         `json:"action" gorm:"not null;index"`
	Details   datatypes.JSON `json:"details" gorm:"type:jsonb"`
	Timestamp time.Time      `json:"timestamp" gorm:"autoCreateTime;index"`
}
