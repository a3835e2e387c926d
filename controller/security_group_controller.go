// controller/security_group_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	"github.com/sepulvedablanco/clouddriver/model"
	"github.com/sepulvedablanco/clouddriver/service"
	"github.com/sepulvedablanco/clouddriver/util"
	helper_util "github.com/sepulvedablanco/clouddriver/util/helper"
)

type SecurityGroupController struct {
	securityGroupService service.ISecurityGroupService
}

func NewSecurityGroupController(securityGroupService service.ISecurityGroupService) *SecurityGroupController {
	return &SecurityGroupController{
		securityGroupService: securityGroupService,
	}
}

// RegisterRoutes registers the API routes
func (sc *SecurityGroupController) RegisterRoutes(r *gin.RouterGroup) {
	securityGroups := r.Group("/securityGroups")
	{
		securityGroups.GET("", sc.ListSecurityGroups)
		securityGroups.GET("/:account/:region/name/:name", sc.GetSecurityGroup)
		securityGroups.GET("/:account/:region/id/:id", sc.GetSecurityGroupByID)
	}
}

// ListSecurityGroups endpoint. The account, region and name query parameters
// narrow the listing; name must come with an account and without a region.
func (sc *SecurityGroupController) ListSecurityGroups(c *gin.Context) {
	includeRules, err := helper_util.GetIncludeRules(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid includeRules parameter", clouddriver_errors.ErrInvalidRequest)
		return
	}

	account := c.Query("account")
	region := c.Query("region")
	name := c.Query("name")

	var groups []*model.SecurityGroup
	switch {
	case name != "" && account == "":
		util.RespondWithError(c, http.StatusBadRequest, "The name filter requires an account", clouddriver_errors.ErrInvalidRequest)
		return
	case name != "" && region != "":
		util.RespondWithError(c, http.StatusBadRequest, "The name filter cannot be combined with a region", clouddriver_errors.ErrInvalidRequest)
		return
	case name != "":
		groups, err = sc.securityGroupService.GetAllByAccountAndName(c, includeRules, account, name)
	case account != "" && region != "":
		groups, err = sc.securityGroupService.GetAllByAccountAndRegion(c, includeRules, account, region)
	case account != "":
		groups, err = sc.securityGroupService.GetAllByAccount(c, includeRules, account)
	case region != "":
		groups, err = sc.securityGroupService.GetAllByRegion(c, includeRules, region)
	default:
		groups, err = sc.securityGroupService.GetAll(c, includeRules)
	}
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list security groups", err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// GetSecurityGroup endpoint
func (sc *SecurityGroupController) GetSecurityGroup(c *gin.Context) {
	account := c.Param("account")
	region := c.Param("region")
	name := c.Param("name")
	vpcID := optionalVpcID(c)

	group, err := sc.securityGroupService.Get(c, account, region, name, vpcID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve security group", err)
		return
	}
	if group == nil {
		util.RespondWithError(c, http.StatusNotFound, "Security group not found", clouddriver_errors.ErrSecurityGroupNotFound)
		return
	}

	c.JSON(http.StatusOK, group)
}

// GetSecurityGroupByID endpoint
func (sc *SecurityGroupController) GetSecurityGroupByID(c *gin.Context) {
	account := c.Param("account")
	region := c.Param("region")
	id := c.Param("id")
	vpcID := optionalVpcID(c)

	group, err := sc.securityGroupService.GetByID(c, account, region, id, vpcID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve security group", err)
		return
	}
	if group == nil {
		util.RespondWithError(c, http.StatusNotFound, "Security group not found", clouddriver_errors.ErrSecurityGroupNotFound)
		return
	}

	c.JSON(http.StatusOK, group)
}

// optionalVpcID keeps the absent / present-but-empty distinction of the vpcId
// query parameter: absent selects by precedence, empty matches non-VPC only.
func optionalVpcID(c *gin.Context) *string {
	if v, ok := c.GetQuery("vpcId"); ok {
		return &v
	}
	return nil
}
