// service/services.go
package service

import (
	"github.com/sepulvedablanco/clouddriver/cache"
	"github.com/sepulvedablanco/clouddriver/dao"
	"github.com/sepulvedablanco/clouddriver/reconstructor"
	"github.com/sepulvedablanco/clouddriver/resolver"
	"github.com/sepulvedablanco/clouddriver/telemetry"
	"github.com/sepulvedablanco/clouddriver/util"
)

type Services struct {
	SecurityGroup ISecurityGroupService
	Account       IAccountService
	Cache         ICacheService
}

func InitializeServices(
	store cache.Store,
	accounts *resolver.AccountResolver,
	reporter telemetry.Reporter,
	validationUtil *util.ValidationUtil,
	eventBus *util.EventBus,
) (*Services, error) {
	sgDAO := dao.NewSecurityGroupDAO(store)
	ruleReconstructor := reconstructor.NewRuleReconstructor(sgDAO, accounts)

	services := &Services{
		SecurityGroup: NewSecurityGroupService(sgDAO, ruleReconstructor, accounts, reporter, eventBus),
		Account:       NewAccountService(accounts),
		Cache:         NewCacheService(store, validationUtil, reporter, eventBus),
	}

	return services, nil
}
