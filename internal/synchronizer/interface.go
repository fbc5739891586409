package synchronizer

import (
	"context"
	"time"

	"creativesync/internal/models"
)

// Service reconciles a fetched creative set against the stored one.
// External packages should use this interface, not the concrete implementations
type Service interface {
	// Synchronize diffs the fetched records against the stored active set:
	// new creatives are inserted, vanished ones deactivated, unchanged ones
	// left alone. All writes happen in one transaction.
	Synchronize(ctx context.Context, records []*models.CreativeRecord) (*models.SyncResult, error)

	// ValidateIntegrity confirms active + inactive adds up to the total
	// for this source
	ValidateIntegrity(ctx context.Context) (*models.IntegrityReport, error)

	// ExistingHashes returns the stored hash set for this source, used by
	// dry runs to compute the would-be diff
	ExistingHashes(ctx context.Context) (map[string]int64, error)

	// CleanupInactive deletes creatives that have been inactive longer
	// than olderThan and returns how many rows went away
	CleanupInactive(ctx context.Context, olderThan time.Duration) (int64, error)
}
