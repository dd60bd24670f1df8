package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rideconnect/internal/middleware"
)

// Options tunes the router. A nil AccessLog disables request logging.
type Options struct {
	AccessLog io.Writer
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Request logging middleware
	if opts.AccessLog != nil {
		r.Use(ginlog.SetLogger(
			ginlog.WithWriter(opts.AccessLog),
			ginlog.WithUTC(true),
			ginlog.WithSkipPath([]string{"/healthz", "/metrics"}),
		))
	}
	r.Use(middleware.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	PublicRoutes(r)
	AuthRoutes(r)
	AdminRoutes(r)
	StaffRoutes(r)
	StudentRoutes(r)
	WebSocketRoutes(r)

	return r
}
