package mocks

import (
	"context"
	"time"

	"creativesync/internal/models"
	"creativesync/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockCreativeStore is a mock implementation of storage.CreativeStore
type MockCreativeStore struct {
	mock.Mock

	// Tx, when set, is handed to WithinTx callbacks so tests can assert
	// on the transactional writes
	Tx storage.Tx
}

var _ storage.CreativeStore = (*MockCreativeStore)(nil)

// ActiveHashesBySource mocks the ActiveHashesBySource method of storage.CreativeStore
func (m *MockCreativeStore) ActiveHashesBySource(ctx context.Context, source string) (map[string]int64, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// HashesBySource mocks the HashesBySource method of storage.CreativeStore
func (m *MockCreativeStore) HashesBySource(ctx context.Context, source string) (map[string]int64, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// WithinTx mocks the WithinTx method of storage.CreativeStore. When a
// MockTx is configured via the Tx field, fn runs against it so tests can
// assert on the transactional writes.
func (m *MockCreativeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	args := m.Called(ctx, fn)
	if m.Tx != nil {
		if err := fn(ctx, m.Tx); err != nil {
			return err
		}
	}
	return args.Error(0)
}

// CountsBySource mocks the CountsBySource method of storage.CreativeStore
func (m *MockCreativeStore) CountsBySource(ctx context.Context, source string) (*models.IntegrityReport, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.IntegrityReport), args.Error(1)
}

// CleanupInactiveBefore mocks the CleanupInactiveBefore method of storage.CreativeStore
func (m *MockCreativeStore) CleanupInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// CountryIDs mocks the CountryIDs method of storage.CreativeStore
func (m *MockCreativeStore) CountryIDs(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// SourceIDs mocks the SourceIDs method of storage.CreativeStore
func (m *MockCreativeStore) SourceIDs(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// BrowserIDs mocks the BrowserIDs method of storage.CreativeStore
func (m *MockCreativeStore) BrowserIDs(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// AdNetworkIDs mocks the AdNetworkIDs method of storage.CreativeStore
func (m *MockCreativeStore) AdNetworkIDs(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

// Ping mocks the Ping method of storage.CreativeStore
func (m *MockCreativeStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks the Close method of storage.CreativeStore
func (m *MockCreativeStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockTx is a mock implementation of storage.Tx
type MockTx struct {
	mock.Mock
}

// InsertCreatives mocks the InsertCreatives method of storage.Tx
func (m *MockTx) InsertCreatives(ctx context.Context, rows []models.StorageRow) ([]int64, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// DeactivateByHashes mocks the DeactivateByHashes method of storage.Tx
func (m *MockTx) DeactivateByHashes(ctx context.Context, source string, hashes []string) ([]int64, error) {
	args := m.Called(ctx, source, hashes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}
