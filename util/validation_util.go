// util/validation_util.go

package util

import (
	"fmt"

	"github.com/sepulvedablanco/clouddriver/cache"
	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	"github.com/sepulvedablanco/clouddriver/keys"
	"github.com/sepulvedablanco/clouddriver/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

func (v *ValidationUtil) ValidateAccount(account model.Account) error {
	if account.Name == "" {
		return fmt.Errorf("%w: account name cannot be empty", clouddriver_errors.ErrInvalidAccount)
	}
	if account.AccountID == "" {
		return fmt.Errorf("%w: account id cannot be empty", clouddriver_errors.ErrInvalidAccount)
	}
	if !keys.ValidField(account.Name) {
		return fmt.Errorf("%w: account name %q contains the key delimiter", clouddriver_errors.ErrInvalidAccount, account.Name)
	}
	// Add more validation rules as needed
	return nil
}

// ValidateEntry checks an ingested cache entry before it is merged: the key
// must decode, must carry the resource type the namespace holds, and must
// name the resource. Decoding also guards segmentation, since a stray
// delimiter in any field changes the segment count.
func (v *ValidationUtil) ValidateEntry(namespace string, entry *cache.Entry) error {
	if entry == nil || entry.Key == "" {
		return fmt.Errorf("%w: entry must have a key", clouddriver_errors.ErrInvalidEntryData)
	}

	key, err := keys.Decode(entry.Key)
	if err != nil {
		return err
	}

	if namespace == keys.NamespaceSecurityGroups && key.Type != keys.TypeSecurityGroup {
		return fmt.Errorf("%w: key type %q does not belong in namespace %q",
			clouddriver_errors.ErrInvalidEntryData, key.Type, namespace)
	}
	if key.Name == "" {
		return fmt.Errorf("%w: key %q has no name segment", clouddriver_errors.ErrInvalidEntryData, entry.Key)
	}
	if key.ID == "" {
		return fmt.Errorf("%w: key %q has no id segment", clouddriver_errors.ErrInvalidEntryData, entry.Key)
	}
	return nil
}
