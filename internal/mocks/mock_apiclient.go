package mocks

import (
	"context"

	"creativesync/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a mock implementation of apiclient.Service
type MockAPIClient struct {
	mock.Mock
}

// FetchPage mocks the FetchPage method of apiclient.Service
func (m *MockAPIClient) FetchPage(ctx context.Context, page int, status string) ([]*models.CreativeRecord, error) {
	args := m.Called(ctx, page, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CreativeRecord), args.Error(1)
}

// FetchAll mocks the FetchAll method of apiclient.Service
func (m *MockAPIClient) FetchAll(ctx context.Context, status string, startPage int) ([]*models.CreativeRecord, error) {
	args := m.Called(ctx, status, startPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CreativeRecord), args.Error(1)
}

// TestConnection mocks the TestConnection method of apiclient.Service
func (m *MockAPIClient) TestConnection(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Stats mocks the Stats method of apiclient.Service
func (m *MockAPIClient) Stats() models.ClientStats {
	args := m.Called()
	return args.Get(0).(models.ClientStats)
}

// Source mocks the Source method of apiclient.Service
func (m *MockAPIClient) Source() string {
	args := m.Called()
	return args.String(0)
}
