// router/router.go

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sepulvedablanco/clouddriver/controller"
	"github.com/sepulvedablanco/clouddriver/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	controllers.SecurityGroup.RegisterRoutes(api)
	controllers.Account.RegisterRoutes(api)
	controllers.Cache.RegisterRoutes(api)
	controllers.Admin.RegisterRoutes(api)

	return router
}
