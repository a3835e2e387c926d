// keys/schema.go

// Package keys owns the composite identity of cached resources: the encoding
// of a resource tuple into a single cache key and the glob patterns used for
// filtered scans. Keys are delimiter-joined with a fixed segment order, so a
// pattern built from a partial tuple matches exactly the entries whose set
// fields are equal.
package keys

import (
	"fmt"
	"strings"

	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
)

const (
	// Delimiter separates key segments. Field values must never contain it;
	// the write path rejects values that would break segmentation.
	Delimiter = ":"

	// Wildcard matches exactly one delimiter-free segment in a pattern.
	Wildcard = "*"

	// NamespaceSecurityGroups is the cache partition holding security groups.
	NamespaceSecurityGroups = "security-groups"

	// TypeSecurityGroup is the resource type segment of security group keys.
	TypeSecurityGroup = "security-group"
)

const segmentCount = 6

// ResourceKey is the decoded form of a cache key. VpcID is optional and
// encodes as an empty trailing segment when absent.
type ResourceKey struct {
	Type    string `json:"type"`
	Account string `json:"account"`
	Region  string `json:"region"`
	Name    string `json:"name"`
	ID      string `json:"id"`
	VpcID   string `json:"vpcId,omitempty"`
}

// Encode joins the key fields into the stable wire form
// "type:account:region:name:id:vpcId". Encode(Decode(k)) == k for every
// valid key.
func Encode(key ResourceKey) string {
	return strings.Join([]string{key.Type, key.Account, key.Region, key.Name, key.ID, key.VpcID}, Delimiter)
}

// Decode splits a cache key back into its fields. Keys with a segment count
// other than the schema's are rejected.
func Decode(key string) (ResourceKey, error) {
	segments := strings.Split(key, Delimiter)
	if len(segments) != segmentCount {
		return ResourceKey{}, fmt.Errorf("%w: expected %d segments, got %d in %q",
			clouddriver_errors.ErrInvalidKey, segmentCount, len(segments), key)
	}
	return ResourceKey{
		Type:    segments[0],
		Account: segments[1],
		Region:  segments[2],
		Name:    segments[3],
		ID:      segments[4],
		VpcID:   segments[5],
	}, nil
}

// BuildPattern turns a partial key into a glob for CacheStore filtering.
// Unset fields become single-segment wildcards, so earlier-position
// wildcards with concrete later fields are supported.
func BuildPattern(partial ResourceKey) string {
	return strings.Join([]string{
		orWildcard(partial.Type),
		orWildcard(partial.Account),
		orWildcard(partial.Region),
		orWildcard(partial.Name),
		orWildcard(partial.ID),
		orWildcard(partial.VpcID),
	}, Delimiter)
}

func orWildcard(field string) string {
	if field == "" {
		return Wildcard
	}
	return field
}

// ValidField reports whether a value can be embedded in a key without
// breaking segmentation.
func ValidField(field string) bool {
	return !strings.Contains(field, Delimiter)
}
