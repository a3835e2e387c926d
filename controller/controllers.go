// controller/controllers.go
package controller

import (
	"github.com/sepulvedablanco/clouddriver/service"
	"github.com/sepulvedablanco/clouddriver/telemetry"
)

type Controllers struct {
	SecurityGroup *SecurityGroupController
	Account       *AccountController
	Cache         *CacheController
	Admin         *AdminController
}

func InitializeControllers(services *service.Services, reporter telemetry.Reporter) *Controllers {
	return &Controllers{
		SecurityGroup: NewSecurityGroupController(services.SecurityGroup),
		Account:       NewAccountController(services.Account),
		Cache:         NewCacheController(services.Cache),
		Admin:         NewAdminController(reporter),
	}
}
