// service/cache_service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sepulvedablanco/clouddriver/cache"
	logger "github.com/sepulvedablanco/clouddriver/logging"
	"github.com/sepulvedablanco/clouddriver/telemetry"
	"github.com/sepulvedablanco/clouddriver/util"
)

// ICacheService defines the interface for cache population and statistics
type ICacheService interface {
	MergeAll(ctx context.Context, namespace string, entries []*cache.Entry) (int, error)
	Stats(ctx context.Context) (map[string]int, error)
}

// CacheService guards the population path: entries are validated before they
// reach the store, and every merged batch is announced on the event bus.
type CacheService struct {
	store          cache.Store
	validationUtil *util.ValidationUtil
	reporter       telemetry.Reporter
	eventBus       *util.EventBus
}

var _ ICacheService = &CacheService{}

// NewCacheService creates a new instance of CacheService
func NewCacheService(store cache.Store, validationUtil *util.ValidationUtil, reporter telemetry.Reporter, eventBus *util.EventBus) *CacheService {
	return &CacheService{
		store:          store,
		validationUtil: validationUtil,
		reporter:       reporter,
		eventBus:       eventBus,
	}
}

// MergeAll validates and merges a batch of entries, returning how many were
// accepted. Invalid entries are rejected and reported one by one; they never
// poison the rest of the batch.
func (s *CacheService) MergeAll(ctx context.Context, namespace string, entries []*cache.Entry) (int, error) {
	accepted := make([]*cache.Entry, 0, len(entries))
	rejected := 0

	for _, entry := range entries {
		if err := s.validationUtil.ValidateEntry(namespace, entry); err != nil {
			key := ""
			if entry != nil {
				key = entry.Key
			}
			s.reporter.ReportReconstructionFailure(ctx, namespace, key, err)
			rejected++
			continue
		}
		accepted = append(accepted, entry)
	}

	if len(accepted) > 0 {
		if err := s.store.MergeAll(ctx, namespace, accepted); err != nil {
			logger.Error("Error merging cache entries", zap.Error(err), zap.String("namespace", namespace))
			return 0, fmt.Errorf("failed to merge cache entries: %w", err)
		}
	}

	if len(entries) > 0 {
		// Publish event for asynchronous processing
		s.eventBus.Publish(ctx, util.EventCacheUpdated, util.CacheUpdatePayload{
			Namespace: namespace,
			Accepted:  len(accepted),
			Rejected:  rejected,
		})
	}

	logger.Info("Cache population batch merged",
		zap.String("namespace", namespace),
		zap.Int("accepted", len(accepted)),
		zap.Int("rejected", rejected))
	return len(accepted), nil
}

// Stats reports the entry count per namespace
func (s *CacheService) Stats(ctx context.Context) (map[string]int, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		logger.Error("Error reading cache stats", zap.Error(err))
		return nil, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return stats, nil
}
