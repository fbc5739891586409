package parsing

import (
	"context"

	"creativesync/internal/models"
)

// Service orchestrates one provider's fetch-normalize-sync pipeline.
// External packages should use this interface, not the concrete implementations
type Service interface {
	// ParseAndSync runs the full cycle: fetch all pages, reconcile against
	// the store, verify integrity, dispatch enrichment for new creatives
	ParseAndSync(ctx context.Context) (*models.RunReport, error)

	// DryRun fetches and diffs without writing anything
	DryRun(ctx context.Context) (*models.DryRunReport, error)

	// TestConnection probes the provider API with one sample page fetch
	TestConnection(ctx context.Context) *models.ConnectionReport

	// LastReport returns the most recent successful run report, or nil
	LastReport() *models.RunReport

	// Source returns the provider this pipeline ingests from
	Source() string
}
