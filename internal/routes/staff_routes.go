package routes

import (
	"github.com/gin-gonic/gin"

	"rideconnect/internal/controllers"
	"rideconnect/internal/middleware"
	"rideconnect/internal/models"
)

// StaffRoutes are open to admins as well.
func StaffRoutes(r *gin.Engine) {
	staff := r.Group("/staff")
	staff.Use(middleware.RequireAuthWithRole(models.RoleStaff, models.RoleAdmin))
	{
		staff.GET("/students", controllers.ListStudents)
		staff.GET("/buses", controllers.ListBusesByNumber)

		staff.GET("/assignments", controllers.ListAssignments)
		staff.GET("/assignments/export", controllers.ExportAssignments)
		staff.POST("/assignments", controllers.CreateAssignment)
		staff.DELETE("/assignments/:id", controllers.DeleteAssignment)

		staff.GET("/announcements", controllers.ListAnnouncements)
		staff.POST("/announcements", controllers.CreateAnnouncement)
	}
}
