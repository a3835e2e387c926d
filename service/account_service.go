// service/account_service.go
package service

import (
	"context"

	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	"github.com/sepulvedablanco/clouddriver/model"
	"github.com/sepulvedablanco/clouddriver/resolver"
)

// IAccountService defines the interface for account lookups
type IAccountService interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	GetAccount(ctx context.Context, name string) (*model.Account, error)
}

// AccountService exposes the configured account registry to the query layer.
type AccountService struct {
	accounts *resolver.AccountResolver
}

var _ IAccountService = &AccountService{}

func NewAccountService(accounts *resolver.AccountResolver) *AccountService {
	return &AccountService{accounts: accounts}
}

// ListAccounts returns every configured account, sorted by name
func (s *AccountService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.accounts.Accounts(), nil
}

// GetAccount retrieves one configured account by name
func (s *AccountService) GetAccount(ctx context.Context, name string) (*model.Account, error) {
	account := s.accounts.ResolveByName(name)
	if account == nil {
		return nil, clouddriver_errors.ErrAccountNotFound
	}
	return account, nil
}
