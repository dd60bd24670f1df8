package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"rideconnect/internal/config"
	"rideconnect/internal/models"
)

// ListAnalytics returns the activity log newest first, optionally narrowed
// by ?user_id= and ?action=.
func ListAnalytics(c *gin.Context) {
	limit, ok := parseLimit(c, 50, 500)
	if !ok {
		return
	}

	query := config.DB.Model(&models.AnalyticsLog{})
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id format"})
			return
		}
		query = query.Where("user_id = ?", userID)
	}
	if action := strings.TrimSpace(c.Query("action")); action != "" {
		query = query.Where("action = ?", action)
	}

	var logs []models.AnalyticsLog
	if err := query.Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).Limit(limit).Find(&logs).Error; err != nil {
		respondError(c, err, "Failed to fetch analytics")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}
