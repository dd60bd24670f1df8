package routes

import (
	"github.com/gin-gonic/gin"

	"rideconnect/internal/controllers"
	"rideconnect/internal/middleware"
	"rideconnect/internal/models"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole(models.RoleAdmin))
	{
		admin.GET("/users", controllers.ListUsers)

		admin.GET("/buses", controllers.ListBuses)
		admin.POST("/buses", controllers.CreateBus)
		admin.PUT("/buses/:id", controllers.UpdateBus)
		admin.DELETE("/buses/:id", controllers.DeleteBus)

		admin.GET("/whitelist", controllers.ListWhitelist)
		admin.POST("/whitelist", controllers.AddWhitelistedUser)
		admin.POST("/whitelist/import", controllers.ImportWhitelist)
		admin.PATCH("/whitelist/:id", controllers.SetWhitelistActive)

		admin.GET("/analytics", controllers.ListAnalytics)
	}
}
