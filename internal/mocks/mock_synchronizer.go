package mocks

import (
	"context"
	"time"

	"creativesync/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockSynchronizer is a mock implementation of synchronizer.Service
type MockSynchronizer struct {
	mock.Mock
}

// Synchronize mocks the Synchronize method of synchronizer.Service
func (m *MockSynchronizer) Synchronize(ctx context.Context, records []*models.CreativeRecord) (*models.SyncResult, error) {
	args := m.Called(ctx, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncResult), args.Error(1)
}

// ValidateIntegrity mocks the ValidateIntegrity method of synchronizer.Service
func (m *MockSynchronizer) ValidateIntegrity(ctx context.Context) (*models.IntegrityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntegrityReport), args.Error(1)
}

// ExistingHashes mocks the ExistingHashes method of synchronizer.Service
func (m *MockSynchronizer) ExistingHashes(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// CleanupInactive mocks the CleanupInactive method of synchronizer.Service
func (m *MockSynchronizer) CleanupInactive(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}
