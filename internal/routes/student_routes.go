package routes

import (
	"github.com/gin-gonic/gin"

	"rideconnect/internal/controllers"
	"rideconnect/internal/middleware"
	"rideconnect/internal/models"
)

func StudentRoutes(r *gin.Engine) {
	student := r.Group("/student")
	student.Use(middleware.RequireAuthWithRole(models.RoleStudent))
	{
		student.GET("/assignment", controllers.GetMyAssignment)
		student.GET("/announcements", controllers.ListAnnouncements)
	}
}
