package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rideconnect/internal/config"
	"rideconnect/internal/models"
	"rideconnect/internal/search"
)

// ListUsers returns every profile, newest first, with per-role totals for
// the dashboard summary. Totals ignore the search filter.
func ListUsers(c *gin.Context) {
	var users []models.Profile
	query := search.Apply(config.DB.Model(&models.Profile{}), c.Query("q"), "name", "email", "role")
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		respondError(c, err, "Failed to fetch users")
		return
	}

	var rows []struct {
		Role  models.Role
		Total int64
	}
	if err := config.DB.Model(&models.Profile{}).Select("role, COUNT(*) AS total").Group("role").Scan(&rows).Error; err != nil {
		respondError(c, err, "Failed to fetch users")
		return
	}
	counts := gin.H{
		string(models.RoleStudent): int64(0),
		string(models.RoleStaff):   int64(0),
		string(models.RoleAdmin):   int64(0),
	}
	var total int64
	for _, r := range rows {
		counts[string(r.Role)] = r.Total
		total += r.Total
	}
	counts["total"] = total

	c.JSON(http.StatusOK, gin.H{"data": users, "counts": counts})
}

type studentSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ListStudents feeds the staff assignment picker.
func ListStudents(c *gin.Context) {
	var students []studentSummary
	query := config.DB.Model(&models.Profile{}).
		Select("id, name, email").
		Where("role = ?", models.RoleStudent)
	query = search.Apply(query, c.Query("q"), "name", "email")
	if err := query.Order("name ASC").Scan(&students).Error; err != nil {
		respondError(c, err, "Failed to fetch students")
		return
	}
	if students == nil {
		students = []studentSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"data": students})
}
