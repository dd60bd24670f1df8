package routes

import (
	"github.com/gin-gonic/gin"

	"rideconnect/internal/controllers"
)

// WebSocketRoutes authenticate inside the handler; see StreamAnnouncements.
func WebSocketRoutes(r *gin.Engine) {
	wsRoutes := r.Group("/ws")
	{
		wsRoutes.GET("/announcements", controllers.StreamAnnouncements)
	}
}
