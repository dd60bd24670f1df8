package services

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"rideconnect/internal/models"
)

// RecordAction appends to the audit trail. Failures are logged, never
// returned: the action itself already succeeded.
func RecordAction(db *gorm.DB, userID uuid.UUID, action string, details map[string]interface{}) {
	entry := models.AnalyticsLog{UserID: userID, Action: action}
	if len(details) > 0 {
		payload, err := json.Marshal(details)
		if err != nil {
			logrus.WithError(err).WithField("action", action).Warn("analytics: could not encode details")
		} else {
			entry.Details = datatypes.JSON(payload)
		}
	}
	if err := db.Create(&entry).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"action":  action,
			"user_id": userID,
		}).Warn("analytics: failed to record action")
	}
}
