// test/mock/reporter.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sepulvedablanco/clouddriver/telemetry"
)

// MockReporter is a mock implementation of telemetry.Reporter
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) ReportReconstructionFailure(ctx context.Context, namespace, key string, cause error) {
	m.Called(ctx, namespace, key, cause)
}

func (m *MockReporter) RecordCachePopulation(namespace string, accepted, rejected int) {
	m.Called(namespace, accepted, rejected)
}

func (m *MockReporter) RecordQuery(operation string, started time.Time) {
	m.Called(operation, started)
}

func (m *MockReporter) RecentFailures(ctx context.Context, limit int) ([]telemetry.ReconstructionFailure, error) {
	args := m.Called(ctx, limit)
	if failures := args.Get(0); failures != nil {
		return failures.([]telemetry.ReconstructionFailure), args.Error(1)
	}
	return nil, args.Error(1)
}
