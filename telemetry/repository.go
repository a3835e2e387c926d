// telemetry/repository.go
package telemetry

import (
	"context"
	"sync"
)

const defaultFailureCapacity = 256

type Repository interface {
	Record(ctx context.Context, failure ReconstructionFailure) error
	Recent(ctx context.Context, limit int) ([]ReconstructionFailure, error)
}

// MemoryRepository keeps the most recent failures in a fixed-size ring.
// Once the ring is full the oldest record is overwritten.
type MemoryRepository struct {
	mu       sync.Mutex
	failures []ReconstructionFailure
	next     int
	size     int
}

var _ Repository = &MemoryRepository{}

func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = defaultFailureCapacity
	}
	return &MemoryRepository{
		failures: make([]ReconstructionFailure, capacity),
	}
}

func (r *MemoryRepository) Record(ctx context.Context, failure ReconstructionFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures[r.next] = failure
	r.next = (r.next + 1) % len(r.failures)
	if r.size < len(r.failures) {
		r.size++
	}
	return nil
}

// Recent returns up to limit failures, newest first. A limit of zero or less
// means everything currently retained.
func (r *MemoryRepository) Recent(ctx context.Context, limit int) ([]ReconstructionFailure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > r.size {
		limit = r.size
	}

	recent := make([]ReconstructionFailure, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.failures)) % len(r.failures)
		recent = append(recent, r.failures[idx])
	}
	return recent, nil
}
