// resolver/account_resolver.go

// Package resolver maps between account identifiers and the friendly account
// names used in query paths and reconstructed rules.
package resolver

import (
	"sort"

	"github.com/sepulvedablanco/clouddriver/model"
)

// AccountResolver answers both directions of the account mapping. It is
// built once from configuration and immutable afterwards, so lookups need no
// locking. When the same name or id appears twice, the later account wins.
type AccountResolver struct {
	byID   map[string]model.Account
	byName map[string]model.Account
}

func NewAccountResolver(accounts []model.Account) *AccountResolver {
	r := &AccountResolver{
		byID:   make(map[string]model.Account, len(accounts)),
		byName: make(map[string]model.Account, len(accounts)),
	}
	for _, account := range accounts {
		if account.Name == "" || account.AccountID == "" {
			continue
		}
		r.byID[account.AccountID] = account
		r.byName[account.Name] = account
	}
	return r
}

// ResolveByAccountID returns the account owning the given provider account
// id, or nil when the id belongs to no configured account.
func (r *AccountResolver) ResolveByAccountID(accountID string) *model.Account {
	account, ok := r.byID[accountID]
	if !ok {
		return nil
	}
	return &account
}

// ResolveByName returns the account with the given name, or nil when no
// configured account carries it.
func (r *AccountResolver) ResolveByName(name string) *model.Account {
	account, ok := r.byName[name]
	if !ok {
		return nil
	}
	return &account
}

// Accounts returns every configured account, sorted by name.
func (r *AccountResolver) Accounts() []model.Account {
	accounts := make([]model.Account, 0, len(r.byName))
	for _, account := range r.byName {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})
	return accounts
}
