package parsing

import (
	"context"
	"sync"
	"time"

	"creativesync/internal/apiclient"
	"creativesync/internal/jobs"
	"creativesync/internal/logger"
	"creativesync/internal/models"
	"creativesync/internal/synchronizer"

	"github.com/google/uuid"
)

// Pipeline implements Service for one provider source
type Pipeline struct {
	source       string
	client       apiclient.Service
	synchronizer synchronizer.Service
	dispatcher   jobs.Dispatcher
	logger       logger.Service

	statusFilter string
	startPage    int

	mu         sync.RWMutex
	lastReport *models.RunReport
}

// NewPipeline wires one provider's ingestion pipeline
func NewPipeline(
	client apiclient.Service,
	syncService synchronizer.Service,
	dispatcher jobs.Dispatcher,
	loggerService logger.Service,
	statusFilter string,
	startPage int,
) Service {
	return &Pipeline{
		source:       client.Source(),
		client:       client,
		synchronizer: syncService,
		dispatcher:   dispatcher,
		logger:       loggerService,
		statusFilter: statusFilter,
		startPage:    startPage,
	}
}

func (p *Pipeline) Source() string {
	return p.source
}

// ParseAndSync runs the full ingestion cycle for this provider
func (p *Pipeline) ParseAndSync(ctx context.Context) (*models.RunReport, error) {
	start := time.Now()

	p.logger.LogInfo(ctx, logger.OpParseAndSync, "Starting ingestion run",
		map[string]interface{}{"source": p.source})

	records, err := p.client.FetchAll(ctx, p.statusFilter, p.startPage)
	if err != nil {
		perr := models.NewParserError(models.PhaseFetch, p.source, "Failed to fetch from API", err)
		p.logger.LogError(ctx, logger.OpParseAndSync, p.source, "Ingestion run failed",
			perr, models.LogSeverityHigh, nil)
		return nil, perr
	}

	syncResult, err := p.synchronizer.Synchronize(ctx, records)
	if err != nil {
		perr := models.NewParserError(models.PhaseSynchronize, p.source, "Parsing cycle failed", err)
		p.logger.LogError(ctx, logger.OpParseAndSync, p.source, "Ingestion run failed",
			perr, models.LogSeverityHigh, nil)
		return nil, perr
	}

	integrity, err := p.synchronizer.ValidateIntegrity(ctx)
	if err != nil {
		perr := models.NewParserError(models.PhaseIntegrity, p.source, "Integrity check failed", err)
		p.logger.LogError(ctx, logger.OpParseAndSync, p.source, "Ingestion run failed",
			perr, models.LogSeverityHigh, nil)
		return nil, perr
	}

	jobData := models.JobData{
		NewCreativeIDs:         syncResult.NewIDs,
		DeactivatedCreativeIDs: syncResult.DeactivatedIDs,
		ShouldDispatchJobs:     syncResult.NewCount > 0,
	}

	// Enrichment dispatch is fire-and-forget: a queue failure must never
	// fail a run whose data is already committed
	if jobData.ShouldDispatchJobs {
		if err := p.dispatcher.DispatchEnrichment(ctx, p.source, syncResult.NewIDs); err != nil {
			p.logger.LogError(ctx, logger.OpDispatchJobs, p.source,
				"Failed to queue enrichment jobs", err, models.LogSeverityMedium,
				map[string]interface{}{"new_creative_ids": len(syncResult.NewIDs)})
		}
	}

	report := &models.RunReport{
		RunID:           uuid.New().String(),
		Source:          p.source,
		Timestamp:       start.UTC(),
		DurationSeconds: time.Since(start).Seconds(),
		FetchedCount:    len(records),
		SyncResult:      syncResult,
		IntegrityCheck:  integrity,
		APIClientStats:  p.client.Stats(),
		JobData:         jobData,
	}

	p.mu.Lock()
	p.lastReport = report
	p.mu.Unlock()

	p.logger.LogSuccess(ctx, logger.OpParseAndSync, p.source, "Ingestion run completed",
		map[string]interface{}{
			"run_id":      report.RunID,
			"fetched":     report.FetchedCount,
			"new":         syncResult.NewCount,
			"deactivated": syncResult.DeactivatedCount,
			"duration_s":  report.DurationSeconds,
		})

	return report, nil
}

// DryRun fetches the remote set and diffs it against the stored hashes
// without performing any writes
func (p *Pipeline) DryRun(ctx context.Context) (*models.DryRunReport, error) {
	start := time.Now()

	records, err := p.client.FetchAll(ctx, p.statusFilter, p.startPage)
	if err != nil {
		return nil, models.NewParserError(models.PhaseDryRun, p.source, "Failed to fetch from API", err)
	}

	existing, err := p.synchronizer.ExistingHashes(ctx)
	if err != nil {
		return nil, models.NewParserError(models.PhaseDryRun, p.source, "Failed to load stored hashes", err)
	}

	fetched := make(map[string]struct{}, len(records))
	for _, record := range records {
		fetched[record.CombinedHash()] = struct{}{}
	}

	wouldInsert := 0
	for hash := range fetched {
		if _, ok := existing[hash]; !ok {
			wouldInsert++
		}
	}

	wouldDeactivate := 0
	for hash := range existing {
		if _, ok := fetched[hash]; !ok {
			wouldDeactivate++
		}
	}

	report := &models.DryRunReport{
		Source:          p.source,
		Timestamp:       start.UTC(),
		DurationSeconds: time.Since(start).Seconds(),
		FetchedCount:    len(records),
		ExistingCount:   len(existing),
		WouldInsert:     wouldInsert,
		WouldDeactivate: wouldDeactivate,
		WouldLeaveAsIs:  len(fetched) - wouldInsert,
		APIClientStats:  p.client.Stats(),
	}

	p.logger.LogInfo(ctx, logger.OpDryRun, "Dry run completed",
		map[string]interface{}{
			"source":           p.source,
			"fetched":          report.FetchedCount,
			"would_insert":     report.WouldInsert,
			"would_deactivate": report.WouldDeactivate,
		})

	return report, nil
}

// TestConnection probes the provider with one sample page fetch
func (p *Pipeline) TestConnection(ctx context.Context) *models.ConnectionReport {
	report := &models.ConnectionReport{
		Source:         p.source,
		Timestamp:      time.Now().UTC(),
		APIClientStats: p.client.Stats(),
	}

	count, err := p.client.TestConnection(ctx)
	if err != nil {
		report.ConnectionStatus = "failed"
		report.Error = err.Error()
		p.logger.LogError(ctx, logger.OpTestConnection, p.source,
			"Provider connection probe failed", err, models.LogSeverityMedium, nil)
		return report
	}

	report.ConnectionStatus = "ok"
	report.SamplePageCount = count
	return report
}

// LastReport returns the most recent successful run report
func (p *Pipeline) LastReport() *models.RunReport {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastReport
}
