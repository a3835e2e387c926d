// telemetry/service.go

// Package telemetry keeps operational visibility concerns in one place:
// prometheus metrics plus a short trail of reconstruction failures that can
// be inspected over the admin API.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logger "github.com/sepulvedablanco/clouddriver/logging"
)

type Reporter interface {
	// ReportReconstructionFailure records one skipped cache entry. It never
	// fails; recording problems are logged and swallowed.
	ReportReconstructionFailure(ctx context.Context, namespace, key string, cause error)

	// RecordCachePopulation updates population counters for one merge batch.
	RecordCachePopulation(namespace string, accepted, rejected int)

	// RecordQuery observes the duration of one query operation.
	RecordQuery(operation string, started time.Time)

	// RecentFailures returns the newest recorded failures, newest first.
	RecentFailures(ctx context.Context, limit int) ([]ReconstructionFailure, error)
}

type reporter struct {
	repo Repository
}

var _ Reporter = &reporter{}

func NewReporter(repo Repository) Reporter {
	return &reporter{repo: repo}
}

func (r *reporter) ReportReconstructionFailure(ctx context.Context, namespace, key string, cause error) {
	reconstructionFailures.WithLabelValues(namespace).Inc()

	logger.Warn("Skipping malformed cache entry",
		zap.String("namespace", namespace),
		zap.String("key", key),
		zap.Error(cause))

	failure := ReconstructionFailure{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Namespace: namespace,
		Key:       key,
		Reason:    cause.Error(),
	}
	if err := r.repo.Record(ctx, failure); err != nil {
		logger.Error("Failed to record reconstruction failure",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (r *reporter) RecordCachePopulation(namespace string, accepted, rejected int) {
	cacheEntriesAccepted.WithLabelValues(namespace).Add(float64(accepted))
	cacheEntriesRejected.WithLabelValues(namespace).Add(float64(rejected))
}

func (r *reporter) RecordQuery(operation string, started time.Time) {
	queryDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func (r *reporter) RecentFailures(ctx context.Context, limit int) ([]ReconstructionFailure, error) {
	return r.repo.Recent(ctx, limit)
}
