package mocks

import (
	"context"

	"creativesync/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockParsing is a mock implementation of parsing.Service
type MockParsing struct {
	mock.Mock
}

// ParseAndSync mocks the ParseAndSync method of parsing.Service
func (m *MockParsing) ParseAndSync(ctx context.Context) (*models.RunReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunReport), args.Error(1)
}

// DryRun mocks the DryRun method of parsing.Service
func (m *MockParsing) DryRun(ctx context.Context) (*models.DryRunReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DryRunReport), args.Error(1)
}

// TestConnection mocks the TestConnection method of parsing.Service
func (m *MockParsing) TestConnection(ctx context.Context) *models.ConnectionReport {
	args := m.Called(ctx)
	return args.Get(0).(*models.ConnectionReport)
}

// LastReport mocks the LastReport method of parsing.Service
func (m *MockParsing) LastReport() *models.RunReport {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*models.RunReport)
}

// Source mocks the Source method of parsing.Service
func (m *MockParsing) Source() string {
	args := m.Called()
	return args.String(0)
}
