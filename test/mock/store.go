// test/mock/store.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sepulvedablanco/clouddriver/cache"
)

// MockStore is a mock implementation of cache.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Merge(ctx context.Context, namespace string, entry *cache.Entry) error {
	args := m.Called(ctx, namespace, entry)
	return args.Error(0)
}

func (m *MockStore) MergeAll(ctx context.Context, namespace string, entries []*cache.Entry) error {
	args := m.Called(ctx, namespace, entries)
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, namespace, key string) (*cache.Entry, error) {
	args := m.Called(ctx, namespace, key)
	if entry := args.Get(0); entry != nil {
		return entry.(*cache.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) GetAll(ctx context.Context, namespace string) ([]*cache.Entry, error) {
	args := m.Called(ctx, namespace)
	if entries := args.Get(0); entries != nil {
		return entries.([]*cache.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Filter(ctx context.Context, namespace, pattern string) ([]*cache.Entry, error) {
	args := m.Called(ctx, namespace, pattern)
	if entries := args.Get(0); entries != nil {
		return entries.([]*cache.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Stats(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if stats := args.Get(0); stats != nil {
		return stats.(map[string]int), args.Error(1)
	}
	return nil, args.Error(1)
}
