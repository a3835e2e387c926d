// cache/memory_store.go
package cache

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	clouddriver_errors "github.com/sepulvedablanco/clouddriver/errors"
	logger "github.com/sepulvedablanco/clouddriver/logging"
)

// InMemoryStore keeps all entries in process memory, partitioned by
// namespace. A single RWMutex guards the whole store; operations only copy
// entry pointers, so reads stay cheap even for large namespaces.
type InMemoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]*Entry
}

var _ Store = &InMemoryStore{}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		namespaces: make(map[string]map[string]*Entry),
	}
}

func (s *InMemoryStore) Merge(ctx context.Context, namespace string, entry *Entry) error {
	if entry == nil || entry.Key == "" {
		return fmt.Errorf("%w: entry must have a key", clouddriver_errors.ErrInvalidEntryData)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]*Entry)
		s.namespaces[namespace] = ns
	}
	ns[entry.Key] = entry

	logger.Debug("Merged cache entry",
		zap.String("namespace", namespace),
		zap.String("key", entry.Key))
	return nil
}

func (s *InMemoryStore) MergeAll(ctx context.Context, namespace string, entries []*Entry) error {
	for _, entry := range entries {
		if entry == nil || entry.Key == "" {
			return fmt.Errorf("%w: entry must have a key", clouddriver_errors.ErrInvalidEntryData)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]*Entry)
		s.namespaces[namespace] = ns
	}
	for _, entry := range entries {
		ns[entry.Key] = entry
	}

	logger.Debug("Merged cache entries",
		zap.String("namespace", namespace),
		zap.Int("count", len(entries)))
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, namespace, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.namespaces[namespace][key]
	if !ok {
		return nil, nil
	}
	return entry, nil
}

func (s *InMemoryStore) GetAll(ctx context.Context, namespace string) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns := s.namespaces[namespace]
	entries := make([]*Entry, 0, len(ns))
	for _, entry := range ns {
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *InMemoryStore) Filter(ctx context.Context, namespace, pattern string) ([]*Entry, error) {
	matcher, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []*Entry
	for key, entry := range s.namespaces[namespace] {
		if matcher.MatchString(key) {
			entries = append(entries, entry)
		}
	}

	logger.Debug("Filtered cache entries",
		zap.String("namespace", namespace),
		zap.String("pattern", pattern),
		zap.Int("count", len(entries)))
	return entries, nil
}

func (s *InMemoryStore) Stats(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int, len(s.namespaces))
	for namespace, ns := range s.namespaces {
		stats[namespace] = len(ns)
	}
	return stats, nil
}

// compilePattern turns a key glob into an anchored regexp. Each "*" matches
// a possibly empty run of characters within one segment, never across the
// segment delimiter, so wildcards cannot absorb neighbouring segments.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	expr := "^" + strings.Join(parts, "[^:]*") + "$"

	matcher, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q", clouddriver_errors.ErrInvalidKey, pattern)
	}
	return matcher, nil
}
