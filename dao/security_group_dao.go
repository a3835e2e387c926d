// dao/security_group_dao.go

// Package dao translates between raw cache entries and the typed security
// group representation used by reconstruction. It owns the attribute layout
// of the security-groups namespace; nothing above it touches raw attributes.
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sepulvedablanco/clouddriver/cache"
	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	"github.com/sepulvedablanco/clouddriver/keys"
	"github.com/sepulvedablanco/clouddriver/model"
)

type SecurityGroupDAO struct {
	store cache.Store
}

func NewSecurityGroupDAO(store cache.Store) *SecurityGroupDAO {
	return &SecurityGroupDAO{store: store}
}

// securityGroupAttributes is the wire layout of a security group entry's
// attribute map. The agent writes this shape; DecodeEntry reads it.
type securityGroupAttributes struct {
	GroupID     string                    `json:"groupId"`
	GroupName   string                    `json:"groupName"`
	Description string                    `json:"description"`
	VpcID       string                    `json:"vpcId"`
	OwnerID     string                    `json:"ownerId"`
	Permissions []model.IngressPermission `json:"ingressPermissions"`
	Tags        []model.Tag               `json:"tags"`
}

// AllEntries returns every raw entry in the security-groups namespace.
func (d *SecurityGroupDAO) AllEntries(ctx context.Context) ([]*cache.Entry, error) {
	entries, err := d.store.GetAll(ctx, keys.NamespaceSecurityGroups)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clouddriver_errors.ErrCacheUnavailable, err)
	}
	return entries, nil
}

// FilterEntries returns the raw entries whose key matches the glob pattern.
func (d *SecurityGroupDAO) FilterEntries(ctx context.Context, pattern string) ([]*cache.Entry, error) {
	entries, err := d.store.Filter(ctx, keys.NamespaceSecurityGroups, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clouddriver_errors.ErrCacheUnavailable, err)
	}
	return entries, nil
}

// DecodeEntry turns one raw cache entry into its typed form. The key and the
// attribute map are decoded together; attribute values win over key segments
// when both carry the same field. Entries without a group id and name are
// rejected as malformed.
func (d *SecurityGroupDAO) DecodeEntry(entry *cache.Entry) (*model.CachedSecurityGroup, error) {
	key, err := keys.Decode(entry.Key)
	if err != nil {
		return nil, err
	}
	if key.Type != keys.TypeSecurityGroup {
		return nil, fmt.Errorf("%w: unexpected resource type %q in key %q",
			clouddriver_errors.ErrMalformedEntry, key.Type, entry.Key)
	}

	data, err := json.Marshal(entry.Attributes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", clouddriver_errors.ErrMalformedEntry, err)
	}
	var attrs securityGroupAttributes
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("%w: %v", clouddriver_errors.ErrMalformedEntry, err)
	}

	if attrs.GroupID == "" {
		attrs.GroupID = key.ID
	}
	if attrs.GroupName == "" {
		attrs.GroupName = key.Name
	}
	if attrs.VpcID == "" {
		attrs.VpcID = key.VpcID
	}
	if attrs.GroupID == "" {
		return nil, fmt.Errorf("%w: missing group id in %q", clouddriver_errors.ErrMalformedEntry, entry.Key)
	}
	if attrs.GroupName == "" {
		return nil, fmt.Errorf("%w: missing group name in %q", clouddriver_errors.ErrMalformedEntry, entry.Key)
	}

	return &model.CachedSecurityGroup{
		Key: keys.ResourceKey{
			Type:    key.Type,
			Account: key.Account,
			Region:  key.Region,
			Name:    attrs.GroupName,
			ID:      attrs.GroupID,
			VpcID:   attrs.VpcID,
		},
		Description: attrs.Description,
		OwnerID:     attrs.OwnerID,
		Permissions: attrs.Permissions,
		Tags:        attrs.Tags,
	}, nil
}

// LookupGroup finds the cached group with the given id, or name when the id
// is absent, scoped to a region and optionally to an account. An empty
// account matches any account. Malformed candidates are skipped; when several
// candidates remain, the one with the smallest key wins so repeated lookups
// stay deterministic. A miss is nil, nil.
func (d *SecurityGroupDAO) LookupGroup(ctx context.Context, account, region, groupID, groupName string) (*model.CachedSecurityGroup, error) {
	if groupID == "" && groupName == "" {
		return nil, nil
	}

	partial := keys.ResourceKey{
		Type:    keys.TypeSecurityGroup,
		Account: account,
		Region:  region,
	}
	if groupID != "" {
		partial.ID = groupID
	} else {
		partial.Name = groupName
	}

	entries, err := d.FilterEntries(ctx, keys.BuildPattern(partial))
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	for _, entry := range entries {
		group, err := d.DecodeEntry(entry)
		if err != nil {
			continue
		}
		return group, nil
	}
	return nil, nil
}
