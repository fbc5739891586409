package synchronizer

import (
	"context"
	"time"

	"creativesync/internal/logger"
	"creativesync/internal/models"
	"creativesync/internal/provider"
	"creativesync/internal/storage"
)

// HashSynchronizer implements Service using the combined content hash as
// creative identity
type HashSynchronizer struct {
	source      string
	store       storage.CreativeStore
	rows        *provider.RowBuilder
	basicWrites bool
	logger      logger.Service
}

// NewHashSynchronizer creates a synchronizer writing full storage projections
func NewHashSynchronizer(source string, store storage.CreativeStore, rows *provider.RowBuilder, loggerService logger.Service) Service {
	return newHashSynchronizer(source, store, rows, false, loggerService)
}

// NewHybridSynchronizer creates a synchronizer writing the reduced basic
// projection. New rows land with only the critical fields and are flagged
// for asynchronous enrichment through the job queue.
func NewHybridSynchronizer(source string, store storage.CreativeStore, rows *provider.RowBuilder, loggerService logger.Service) Service {
	return newHashSynchronizer(source, store, rows, true, loggerService)
}

func newHashSynchronizer(source string, store storage.CreativeStore, rows *provider.RowBuilder, basicWrites bool, loggerService logger.Service) *HashSynchronizer {
	return &HashSynchronizer{
		source:      source,
		store:       store,
		rows:        rows,
		basicWrites: basicWrites,
		logger:      loggerService,
	}
}

// Synchronize reconciles the fetched set against the stored active set
func (s *HashSynchronizer) Synchronize(ctx context.Context, records []*models.CreativeRecord) (*models.SyncResult, error) {
	activeHashes, err := s.store.ActiveHashesBySource(ctx, s.source)
	if err != nil {
		return nil, err
	}

	// Dedup within the fetch: providers repeat creatives across pages,
	// first occurrence wins
	fetched := make(map[string]*models.CreativeRecord, len(records))
	for _, record := range records {
		hash := record.CombinedHash()
		if _, seen := fetched[hash]; !seen {
			fetched[hash] = record
		}
	}

	var toInsert []models.StorageRow
	unchanged := 0
	for hash, record := range fetched {
		if _, exists := activeHashes[hash]; exists {
			unchanged++
			continue
		}
		toInsert = append(toInsert, s.project(ctx, record))
	}

	var toDeactivate []string
	for hash := range activeHashes {
		if _, stillListed := fetched[hash]; !stillListed {
			toDeactivate = append(toDeactivate, hash)
		}
	}

	result := &models.SyncResult{UnchangedCount: unchanged}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		insertedIDs, err := tx.InsertCreatives(ctx, toInsert)
		if err != nil {
			return err
		}

		deactivatedIDs, err := tx.DeactivateByHashes(ctx, s.source, toDeactivate)
		if err != nil {
			return err
		}

		result.NewIDs = insertedIDs
		result.NewCount = len(insertedIDs)
		result.DeactivatedIDs = deactivatedIDs
		result.DeactivatedCount = len(deactivatedIDs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogSuccess(ctx, logger.OpSynchronize, s.source, "Synchronized creative set",
		map[string]interface{}{
			"new":         result.NewCount,
			"deactivated": result.DeactivatedCount,
			"unchanged":   result.UnchangedCount,
		})

	return result, nil
}

func (s *HashSynchronizer) project(ctx context.Context, record *models.CreativeRecord) models.StorageRow {
	if s.basicWrites {
		return s.rows.BasicRow(ctx, record)
	}
	return s.rows.Row(ctx, record)
}

// ValidateIntegrity checks the stored counts add up for this source
func (s *HashSynchronizer) ValidateIntegrity(ctx context.Context) (*models.IntegrityReport, error) {
	report, err := s.store.CountsBySource(ctx, s.source)
	if err != nil {
		return nil, err
	}

	if !report.IntegrityOK {
		s.logger.LogError(ctx, logger.OpSynchronize, s.source,
			"Creative counts do not add up", nil, models.LogSeverityHigh,
			map[string]interface{}{
				"total":    report.TotalCreatives,
				"active":   report.ActiveCreatives,
				"inactive": report.InactiveCreatives,
			})
	}

	return report, nil
}

// ExistingHashes returns the stored hash set for this source
func (s *HashSynchronizer) ExistingHashes(ctx context.Context) (map[string]int64, error) {
	return s.store.HashesBySource(ctx, s.source)
}

// CleanupInactive deletes creatives inactive for longer than olderThan
func (s *HashSynchronizer) CleanupInactive(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	removed, err := s.store.CleanupInactiveBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.LogInfo(ctx, logger.OpCleanup, "Removed long-inactive creatives",
			map[string]interface{}{"source": s.source, "removed": removed})
	}

	return removed, nil
}
