// model/security_group.go
package model

import "github.com/sepulvedablanco/clouddriver/keys"

// SecurityGroupSummary is a partially-resolved cross-reference to a security
// group, not the full reconstructed view. Every field except id and region
// may be absent when the reference could not be completed from the cache.
type SecurityGroupSummary struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	AccountName string `json:"accountName,omitempty"`
	AccountID   string `json:"accountId,omitempty"`
	Region      string `json:"region,omitempty"`
	VpcID       string `json:"vpcId,omitempty"`
}

// Tag is one provider tag attached to a security group.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SecurityGroup is the reconstructed domain view served to consumers. It is
// derived fresh per query from cached attributes and has no persistent
// identity beyond its key fields; callers must not mutate the rule set.
type SecurityGroup struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	AccountName  string        `json:"accountName"`
	AccountID    string        `json:"accountId,omitempty"`
	Region       string        `json:"region"`
	VpcID        string        `json:"vpcId,omitempty"`
	InboundRules []InboundRule `json:"inboundRules"`
	Tags         []Tag         `json:"tags,omitempty"`
}

// CachedSecurityGroup is the typed form of one cache entry: the decoded key
// plus the attribute fields reconstruction needs. It is an intermediate
// representation, never serialized back out.
type CachedSecurityGroup struct {
	Key         keys.ResourceKey
	Description string
	OwnerID     string
	Permissions []IngressPermission
	Tags        []Tag
}
