package provider

import (
	"context"
	"strings"
	"time"

	"creativesync/internal/models"
	"creativesync/internal/normalizer"
)

// RowBuilder projects unified creative records into creatives-table rows,
// resolving raw country/source/browser/network values into reference-table
// ids through the lookup service. Unresolved values leave the foreign key
// nil rather than failing the row.
type RowBuilder struct {
	lookups normalizer.LookupService
}

// NewRowBuilder creates a storage-row builder over the given lookups
func NewRowBuilder(lookups normalizer.LookupService) *RowBuilder {
	return &RowBuilder{lookups: lookups}
}

// Row builds the full storage projection of a record
func (b *RowBuilder) Row(ctx context.Context, record *models.CreativeRecord) models.StorageRow {
	row := b.baseRow(ctx, record)

	if record.Source == models.SourceFeedHouse {
		row.Metadata = map[string]interface{}{
			"adNetwork":  record.AdNetwork,
			"browser":    record.Browser,
			"os":         record.OS,
			"deviceType": record.DeviceType,
			"seenCount":  record.SeenCount,
		}
		if record.LastSeenAt != nil {
			row.Metadata["lastSeenAt"] = record.LastSeenAt.Format(time.RFC3339)
		}
	}

	return row
}

// BasicRow builds the reduced projection used by the hybrid write strategy:
// the critical fields land immediately and the metadata flags the row for
// asynchronous enrichment.
func (b *RowBuilder) BasicRow(ctx context.Context, record *models.CreativeRecord) models.StorageRow {
	row := b.baseRow(ctx, record)

	row.Metadata = map[string]interface{}{
		"seenCount":            record.SeenCount,
		"processing_status":    "basic",
		"enhancement_required": true,
	}

	return row
}

func (b *RowBuilder) baseRow(ctx context.Context, record *models.CreativeRecord) models.StorageRow {
	status := models.StatusInactive
	if record.IsActive {
		status = models.StatusActive
	}

	row := models.StorageRow{
		ExternalID:        record.ExternalID,
		Source:            record.Source,
		Title:             record.Title,
		Description:       record.Text,
		IconURL:           optionalString(record.IconURL),
		MainImageURL:      optionalString(record.ImageURL),
		LandingURL:        record.TargetURL,
		CPC:               record.CPC,
		Platform:          record.Platform,
		Format:            record.Format,
		OperationSystem:   operationSystem(record.OS),
		IsAdult:           record.IsAdult,
		Status:            status,
		CombinedHash:      record.CombinedHash(),
		ExternalCreatedAt: record.CreatedAt,
	}

	if id, ok := b.lookups.SourceID(ctx, record.Source); ok {
		row.SourceID = &id
	}
	if id, ok := b.lookups.CountryID(ctx, record.CountryCode); ok {
		row.CountryID = &id
	}
	if record.Browser != "" {
		if id, ok := b.lookups.BrowserID(ctx, record.Browser); ok {
			row.BrowserID = &id
		}
	}
	if id, ok := b.lookups.AdNetworkID(ctx, record.AdNetwork); ok {
		row.AdNetworkID = &id
	}

	return row
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func operationSystem(os string) string {
	normalized := strings.ToLower(strings.TrimSpace(os))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
