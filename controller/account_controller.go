// controller/account_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	"github.com/sepulvedablanco/clouddriver/service"
	"github.com/sepulvedablanco/clouddriver/util"
)

type AccountController struct {
	accountService service.IAccountService
}

func NewAccountController(accountService service.IAccountService) *AccountController {
	return &AccountController{
		accountService: accountService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AccountController) RegisterRoutes(r *gin.RouterGroup) {
	accounts := r.Group("/accounts")
	{
		accounts.GET("", ac.ListAccounts)
		accounts.GET("/:name", ac.GetAccount)
	}
}

// ListAccounts endpoint
func (ac *AccountController) ListAccounts(c *gin.Context) {
	accounts, err := ac.accountService.ListAccounts(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	c.JSON(http.StatusOK, accounts)
}

// GetAccount endpoint
func (ac *AccountController) GetAccount(c *gin.Context) {
	name := c.Param("name")

	account, err := ac.accountService.GetAccount(c, name)
	if err != nil {
		if errors.Is(err, clouddriver_errors.ErrAccountNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Account not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve account", err)
		}
		return
	}

	c.JSON(http.StatusOK, account)
}
