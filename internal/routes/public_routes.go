package routes

import (
	"github.com/gin-gonic/gin"

	"rideconnect/internal/controllers"
	"rideconnect/internal/middleware"
)

func PublicRoutes(r *gin.Engine) {
	r.GET("/", controllers.Index)
	r.GET("/healthz", controllers.Healthz)

	// Any signed-in role may read the feed.
	r.GET("/announcements", middleware.RequireAuth(), controllers.ListAnnouncements)
}
