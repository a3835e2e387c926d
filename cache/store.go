// cache/store.go

// Package cache provides the generic namespaced key/attribute store backing
// the inventory layer. The store is schemaless: it has no knowledge of what
// the entries describe, and namespace existence is purely a population-time
// concern.
package cache

import "context"

// Entry is one cached resource: a key, its flattened raw attributes, and
// optional relationships to other cached keys. Entries handed to Merge and
// returned from reads are shared between callers; they must be treated as
// immutable, and writes always replace the whole entry.
type Entry struct {
	Key           string                 `json:"key"`
	Attributes    map[string]interface{} `json:"attributes"`
	Relationships map[string][]string    `json:"relationships,omitempty"`
}

// Store is the cache contract shared by the population path (writers) and
// the query path (readers). Implementations must support concurrent writers
// and readers without caller-side locking. Lookup misses are not errors: Get
// returns a nil entry, and an unknown namespace yields an empty result.
type Store interface {
	// Merge upserts one entry by key. Merging the same entry twice is a no-op.
	Merge(ctx context.Context, namespace string, entry *Entry) error

	// MergeAll upserts a batch of entries by key.
	MergeAll(ctx context.Context, namespace string, entries []*Entry) error

	// Get returns the entry for a key, or nil when absent.
	Get(ctx context.Context, namespace, key string) (*Entry, error)

	// GetAll returns every entry in a namespace, in no particular order.
	GetAll(ctx context.Context, namespace string) ([]*Entry, error)

	// Filter returns the entries whose key matches the glob pattern, in no
	// particular order. Pattern segments are delimiter-separated and "*"
	// matches one delimiter-free segment (which may be empty).
	Filter(ctx context.Context, namespace, pattern string) ([]*Entry, error)

	// Stats reports the number of entries per namespace.
	Stats(ctx context.Context) (map[string]int, error)
}
