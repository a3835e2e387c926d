// model/account.go
package model

// Account is one entry of the configured account registry, mapping the
// control plane's account name to the provider-native account id.
type Account struct {
	Name      string `json:"name"`
	AccountID string `json:"accountId"`
}
