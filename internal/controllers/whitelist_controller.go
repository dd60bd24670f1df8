package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rideconnect/internal/config"
	"rideconnect/internal/metrics"
	"rideconnect/internal/middleware"
	"rideconnect/internal/models"
	"rideconnect/internal/search"
	"rideconnect/internal/services"
)

// AddWhitelistedUser is the add_whitelisted_user procedure.
func AddWhitelistedUser(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, rpcResult{Error: "Please fill in all user details"})
		return
	}

	adminID := middleware.CurrentUserID(c)
	entry, err := services.AddWhitelistedUser(config.DB, adminID, services.WhitelistInput{
		Email: input.Email,
		Name:  input.Name,
		Role:  input.Role,
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			respondError(c, err, "Failed to add user to whitelist")
			return
		}
		c.JSON(status, rpcResult{Error: services.UserMessage(err)})
		return
	}
	metrics.WhitelistAdds.WithLabelValues("form").Inc()

	services.RecordAction(config.DB, adminID, models.ActionWhitelistAdded, map[string]interface{}{
		"email": entry.Email,
		"role":  entry.Role,
	})

	c.JSON(http.StatusCreated, rpcResult{
		Success: true,
		Message: fmt.Sprintf("User %s added to whitelist successfully", entry.Name),
		Email:   entry.Email,
		Name:    entry.Name,
		Role:    entry.Role,
	})
}

// ListWhitelist returns entries newest first. ?registered=true|false narrows
// to registered or pending entries.
func ListWhitelist(c *gin.Context) {
	query := search.Apply(config.DB.Model(&models.WhitelistedUser{}), c.Query("q"), "email", "name", "role")
	if raw := c.Query("registered"); raw != "" {
		registered, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "registered must be true or false"})
			return
		}
		query = query.Where("is_registered = ?", registered)
	}

	var entries []models.WhitelistedUser
	if err := query.Order("added_at DESC").Find(&entries).Error; err != nil {
		respondError(c, err, "Failed to fetch whitelist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func SetWhitelistActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.IsActive == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_active is required"})
		return
	}

	entry, err := services.SetWhitelistActive(config.DB, id, *input.IsActive)
	if err != nil {
		respondError(c, err, "Failed to update whitelist entry")
		return
	}

	services.RecordAction(config.DB, middleware.CurrentUserID(c), models.ActionWhitelistToggled, map[string]interface{}{
		"email":     entry.Email,
		"is_active": entry.IsActive,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Whitelist entry updated", "entry": entry})
}

// ImportWhitelist accepts an xlsx upload in the "file" form field.
func ImportWhitelist(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An xlsx file is required in the 'file' field"})
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err, "Failed to read upload")
		return
	}
	defer file.Close()

	adminID := middleware.CurrentUserID(c)
	report, err := services.ImportWhitelist(config.DB, adminID, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read spreadsheet: " + err.Error()})
		return
	}
	metrics.WhitelistAdds.WithLabelValues("import").Add(float64(report.Imported))

	services.RecordAction(config.DB, adminID, models.ActionWhitelistImported, map[string]interface{}{
		"file":       header.Filename,
		"imported":   report.Imported,
		"duplicates": report.Duplicates,
		"skipped":    report.Skipped,
		"errors":     len(report.Errors),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Import finished", "report": report})
}
