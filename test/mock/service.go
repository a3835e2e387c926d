// test/mock/service.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sepulvedablanco/clouddriver/cache"
	"github.com/sepulvedablanco/clouddriver/model"
)

// MockSecurityGroupService is a mock implementation of service.ISecurityGroupService
type MockSecurityGroupService struct {
	mock.Mock
}

func (m *MockSecurityGroupService) GetAll(ctx context.Context, includeRules bool) ([]*model.SecurityGroup, error) {
	args := m.Called(ctx, includeRules)
	if groups := args.Get(0); groups != nil {
		return groups.([]*model.SecurityGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSecurityGroupService) GetAllByRegion(ctx context.Context, includeRules bool, region string) ([]*model.SecurityGroup, error) {
	args := m.Called(ctx, includeRules, region)
	if groups := args.Get(0); groups != nil {
		return groups.([]*model.SecurityGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSecurityGroupService) GetAllByAccount(ctx context.Context, includeRules bool, account string) ([]*model.SecurityGroup, error) {
	args := m.Called(ctx, includeRules, account)
	if groups := args.Get(0); groups != nil {
		return groups.([]*model.SecurityGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSecurityGroupService) GetAllByAccountAndRegion(ctx context.Context, includeRules bool, account, region string) ([]*model.SecurityGroup, error) {
	args := m.Called(ctx, includeRules, account, region)
	if groups := args.Get(0); groups != nil {
		return groups.([]*model.SecurityGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSecurityGroupService) GetAllByAccountAndName(ctx context.Context, includeRules bool, account, name string) ([]*model.SecurityGroup, error) {
	args := m.Called(ctx, includeRules, account, name)
	if groups := args.Get(0); groups != nil {
		return groups.([]*model.SecurityGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSecurityGroupService) Get(ctx context.Context, account, region, name string, vpcID *string) (*model.SecurityGroup, error) {
	args := m.Called(ctx, account, region, name, vpcID)
	if group := args.Get(0); group != nil {
		return group.(*model.SecurityGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSecurityGroupService) GetByID(ctx context.Context, account, region, id string, vpcID *string) (*model.SecurityGroup, error) {
	args := m.Called(ctx, account, region, id, vpcID)
	if group := args.Get(0); group != nil {
		return group.(*model.SecurityGroup), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAccountService is a mock implementation of service.IAccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	if accounts := args.Get(0); accounts != nil {
		return accounts.([]model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountService) GetAccount(ctx context.Context, name string) (*model.Account, error) {
	args := m.Called(ctx, name)
	if account := args.Get(0); account != nil {
		return account.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCacheService is a mock implementation of service.ICacheService
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) MergeAll(ctx context.Context, namespace string, entries []*cache.Entry) (int, error) {
	args := m.Called(ctx, namespace, entries)
	return args.Int(0), args.Error(1)
}

func (m *MockCacheService) Stats(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if stats := args.Get(0); stats != nil {
		return stats.(map[string]int), args.Error(1)
	}
	return nil, args.Error(1)
}
