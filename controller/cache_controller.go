// controller/cache_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sepulvedablanco/clouddriver/cache"
	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	"github.com/sepulvedablanco/clouddriver/service"
	"github.com/sepulvedablanco/clouddriver/util"
)

type CacheController struct {
	cacheService service.ICacheService
}

func NewCacheController(cacheService service.ICacheService) *CacheController {
	return &CacheController{
		cacheService: cacheService,
	}
}

// RegisterRoutes registers the API routes
func (cc *CacheController) RegisterRoutes(r *gin.RouterGroup) {
	cacheRoutes := r.Group("/cache")
	{
		cacheRoutes.POST("/:namespace", cc.PutEntries)
		cacheRoutes.GET("/stats", cc.GetStats)
	}
}

// PutEntries endpoint. Caching agents post batches of already-flattened
// entries; entries that fail validation are skipped and reported, never fatal.
func (cc *CacheController) PutEntries(c *gin.Context) {
	namespace := c.Param("namespace")

	var entries []*cache.Entry
	if err := c.ShouldBindJSON(&entries); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid cache entries", clouddriver_errors.ErrInvalidEntryData)
		return
	}

	accepted, err := cc.cacheService.MergeAll(c, namespace, entries)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to merge cache entries", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"namespace": namespace,
		"accepted":  accepted,
		"rejected":  len(entries) - accepted,
	})
}

// GetStats endpoint
func (cc *CacheController) GetStats(c *gin.Context) {
	stats, err := cc.cacheService.Stats(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to read cache stats", err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
