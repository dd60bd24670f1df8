package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rideconnect/internal/config"
	"rideconnect/internal/metrics"
	"rideconnect/internal/middleware"
	"rideconnect/internal/models"
	"rideconnect/internal/services"
)

type credentialsInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupUser is the register_whitelisted_user procedure: only whitelisted,
// active emails may create an account, with the name and role the admin
// whitelisted them under.
func SignupUser(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, rpcResult{Error: "Invalid request body"})
		return
	}

	profile, err := services.RegisterWhitelistedUser(config.DB, input.Email, input.Password)
	if err != nil {
		status := statusFor(err)
		msg := services.UserMessage(err)
		if status == http.StatusInternalServerError {
			respondError(c, err, "Failed to verify whitelist status")
			metrics.SignupsTotal.WithLabelValues("error").Inc()
			return
		}
		metrics.SignupsTotal.WithLabelValues("rejected").Inc()
		c.JSON(status, rpcResult{Error: msg})
		return
	}
	metrics.SignupsTotal.WithLabelValues("created").Inc()

	token, err := middleware.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, rpcResult{Error: "could not generate token"})
		return
	}

	services.RecordAction(config.DB, profile.ID, models.ActionSignUp, map[string]interface{}{
		"email": profile.Email,
		"role":  profile.Role,
	})

	c.JSON(http.StatusCreated, rpcResult{
		Success:  true,
		Message:  "Your account has been created successfully.",
		UserID:   profile.ID.String(),
		Email:    profile.Email,
		Name:     profile.Name,
		Role:     profile.Role,
		Token:    token,
		Redirect: profile.Role.HomePath(),
	})
}

func LoginUser(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := services.Authenticate(config.DB, input.Email, input.Password)
	if err != nil {
		respondError(c, err, "Sign in failed")
		return
	}

	token, err := middleware.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	services.RecordAction(config.DB, profile.ID, models.ActionSignIn, nil)

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"user":     profile,
		"redirect": profile.Role.HomePath(),
	})
}

// Me returns the signed-in profile and the dashboard it belongs on.
func Me(c *gin.Context) {
	var profile models.Profile
	if err := config.DB.First(&profile, "id = ?", middleware.CurrentUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		respondError(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":     profile,
		"redirect": profile.Role.HomePath(),
	})
}
