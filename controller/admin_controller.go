// controller/admin_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	"github.com/sepulvedablanco/clouddriver/telemetry"
	"github.com/sepulvedablanco/clouddriver/util"
	helper_util "github.com/sepulvedablanco/clouddriver/util/helper"
)

type AdminController struct {
	reporter telemetry.Reporter
}

func NewAdminController(reporter telemetry.Reporter) *AdminController {
	return &AdminController{
		reporter: reporter,
	}
}

// RegisterRoutes registers the API routes
func (ac *AdminController) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/reconstructionFailures", ac.ListReconstructionFailures)
	}
}

// ListReconstructionFailures endpoint
func (ac *AdminController) ListReconstructionFailures(c *gin.Context) {
	limit, err := helper_util.GetLimitParam(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid limit parameter", clouddriver_errors.ErrInvalidRequest)
		return
	}

	failures, err := ac.reporter.RecentFailures(c, limit)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list reconstruction failures", err)
		return
	}

	c.JSON(http.StatusOK, failures)
}
