package storage

import (
	"context"
	"time"

	"creativesync/internal/models"
)

// Tx exposes the write operations that must share one transaction during
// a synchronization pass
type Tx interface {
	// InsertCreatives bulk-inserts rows and returns the new row ids in
	// insert order
	InsertCreatives(ctx context.Context, rows []models.StorageRow) ([]int64, error)

	// DeactivateByHashes flips the given creatives of one source to
	// inactive and returns the affected row ids
	DeactivateByHashes(ctx context.Context, source string, hashes []string) ([]int64, error)
}

// CreativeStore defines the persistence interface for creatives.
// External packages should use this interface, not the concrete implementations
type CreativeStore interface {
	// ActiveHashesBySource returns combined_hash -> row id for the active
	// creatives of one source
	ActiveHashesBySource(ctx context.Context, source string) (map[string]int64, error)

	// HashesBySource returns combined_hash -> row id for all creatives of
	// one source regardless of status
	HashesBySource(ctx context.Context, source string) (map[string]int64, error)

	// WithinTx runs fn inside a single database transaction, committing on
	// nil and rolling back on error
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// CountsBySource reports total/active/inactive counts for one source
	CountsBySource(ctx context.Context, source string) (*models.IntegrityReport, error)

	// CleanupInactiveBefore deletes inactive creatives last updated before
	// the cutoff and returns how many rows went away
	CleanupInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Reference-table reads backing the lookup service
	CountryIDs(ctx context.Context) (map[string]int64, error)
	SourceIDs(ctx context.Context) (map[string]int64, error)
	BrowserIDs(ctx context.Context) (map[string]int64, error)
	AdNetworkIDs(ctx context.Context) (map[string]int64, error)

	Ping(ctx context.Context) error
	Close() error
}
