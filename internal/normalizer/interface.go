package normalizer

import "context"

// LookupService resolves raw provider values (country codes, source names,
// browser names, ad-network names) into surrogate identifiers from the
// reference tables. Unknown values resolve to (0, false), never an error:
// validity of the owning record is judged downstream.
type LookupService interface {
	CountryID(ctx context.Context, code string) (int64, bool)
	SourceID(ctx context.Context, name string) (int64, bool)
	BrowserID(ctx context.Context, name string) (int64, bool)
	AdNetworkID(ctx context.Context, name string) (int64, bool)
}

// ReferenceSource loads the raw reference-table maps from persistent
// storage. Implemented by the creatives store.
type ReferenceSource interface {
	CountryIDs(ctx context.Context) (map[string]int64, error)
	SourceIDs(ctx context.Context) (map[string]int64, error)
	BrowserIDs(ctx context.Context) (map[string]int64, error)
	AdNetworkIDs(ctx context.Context) (map[string]int64, error)
}
