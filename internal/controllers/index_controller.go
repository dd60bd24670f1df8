package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rideconnect/internal/config"
)

// Index describes the service and where each role lands after sign-in.
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "PU RideConnect",
		"description": "Smart University Transportation Management",
		"sign_in":     "/auth/login",
		"sign_up":     "/auth/signup",
		"dashboards": gin.H{
			"student": "/student",
			"staff":   "/staff",
			"admin":   "/admin",
		},
	})
}

// Healthz reports whether the database answers a ping.
func Healthz(c *gin.Context) {
	sqlDB, err := config.DB.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
