package apiclient

import (
	"context"

	"creativesync/internal/models"
)

// Service defines the interface for fetching creatives from a provider API
// External packages should use this interface, not the concrete implementations
type Service interface {
	// FetchPage retrieves and decodes one listing page. Invalid records are
	// dropped, a non-array body counts as an empty page.
	FetchPage(ctx context.Context, page int, status string) ([]*models.CreativeRecord, error)

	// FetchAll walks the listing pages from startPage until a page yields
	// no valid records or the page ceiling is hit. A page failure after the
	// first page returns the records gathered so far.
	FetchAll(ctx context.Context, status string, startPage int) ([]*models.CreativeRecord, error)

	// TestConnection fetches one sample page and returns its record count
	TestConnection(ctx context.Context) (int, error)

	// Stats reports the client's effective configuration
	Stats() models.ClientStats

	// Source returns the provider identifier this client fetches from
	Source() string
}
