package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDispatcher is a mock implementation of jobs.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

// DispatchEnrichment mocks the DispatchEnrichment method of jobs.Dispatcher
func (m *MockDispatcher) DispatchEnrichment(ctx context.Context, source string, creativeIDs []int64) error {
	args := m.Called(ctx, source, creativeIDs)
	return args.Error(0)
}
