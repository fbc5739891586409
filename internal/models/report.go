package models

import "time"

// SyncResult summarizes one reconciliation of a provider's remote active set
// against the local store.
type SyncResult struct {
	NewCount         int     `json:"new_count"`
	DeactivatedCount int     `json:"deactivated_count"`
	UnchangedCount   int     `json:"unchanged_count"`
	NewIDs           []int64 `json:"new_ids"`
	DeactivatedIDs   []int64 `json:"deactivated_ids"`
}

// IntegrityReport is a post-sync consistency read over the stored rows of a
// single source. IntegrityOK is false when active+inactive != total.
type IntegrityReport struct {
	TotalCreatives    int64 `json:"total_creatives"`
	ActiveCreatives   int64 `json:"active_creatives"`
	InactiveCreatives int64 `json:"inactive_creatives"`
	IntegrityOK       bool  `json:"integrity_check"`
}

// ClientStats is observability metadata about an API client's configuration.
type ClientStats struct {
	BaseURL        string  `json:"base_url"`
	TimeoutSeconds float64 `json:"timeout_seconds"`
	MaxRetries     int     `json:"max_retries"`
	MaxPages       int     `json:"max_pages"`
	RequestsPerSec int     `json:"requests_per_sec"`
}

// JobData carries the identifiers handed to the enrichment job dispatcher
// after a sync run.
type JobData struct {
	NewCreativeIDs         []int64 `json:"new_creative_ids"`
	DeactivatedCreativeIDs []int64 `json:"deactivated_creative_ids"`
	ShouldDispatchJobs     bool    `json:"should_dispatch_jobs"`
}

// RunReport is the structured result of one end-to-end parse-and-sync run.
type RunReport struct {
	RunID           string           `json:"run_id"`
	Source          string           `json:"source"`
	Timestamp       time.Time        `json:"timestamp"`
	DurationSeconds float64          `json:"duration_seconds"`
	FetchedCount    int              `json:"fetched_count"`
	SyncResult      *SyncResult      `json:"sync_result"`
	IntegrityCheck  *IntegrityReport `json:"integrity_check"`
	APIClientStats  ClientStats      `json:"api_client_stats"`
	JobData         JobData          `json:"job_data"`
}

// DryRunReport is the result of a fetch-and-diff pass that performs no
// writes.
type DryRunReport struct {
	Source          string      `json:"source"`
	Timestamp       time.Time   `json:"timestamp"`
	DurationSeconds float64     `json:"duration_seconds"`
	FetchedCount    int         `json:"fetched_count"`
	ExistingCount   int         `json:"existing_count"`
	WouldInsert     int         `json:"would_insert"`
	WouldDeactivate int         `json:"would_deactivate"`
	WouldLeaveAsIs  int         `json:"would_leave_as_is"`
	APIClientStats  ClientStats `json:"api_client_stats"`
}

// ConnectionReport is the result of a connectivity probe against a provider.
type ConnectionReport struct {
	Source           string      `json:"source"`
	ConnectionStatus string      `json:"connection_status"`
	SamplePageCount  int         `json:"sample_page_count,omitempty"`
	Error            string      `json:"error,omitempty"`
	Timestamp        time.Time   `json:"timestamp"`
	APIClientStats   ClientStats `json:"api_client_stats"`
}
