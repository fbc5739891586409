package normalizer

import (
	"context"
	"strings"
	"time"

	"creativesync/internal/cache"
)

// lookupTables implements LookupService over a ReferenceSource with a
// cache.Service in front of it. The maps are small (a few hundred entries
// each) so whole tables are cached, not individual keys.
type lookupTables struct {
	source ReferenceSource
	cache  cache.Service
	ttl    time.Duration
}

// NewLookup creates a cache-backed lookup service over the reference tables
func NewLookup(source ReferenceSource, cacheService cache.Service, ttl time.Duration) LookupService {
	return &lookupTables{
		source: source,
		cache:  cacheService,
		ttl:    ttl,
	}
}

func (l *lookupTables) CountryID(ctx context.Context, code string) (int64, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return 0, false
	}
	return l.resolve(ctx, "lookup:countries", l.source.CountryIDs, normalized)
}

func (l *lookupTables) SourceID(ctx context.Context, name string) (int64, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return 0, false
	}
	return l.resolve(ctx, "lookup:sources", l.source.SourceIDs, normalized)
}

func (l *lookupTables) BrowserID(ctx context.Context, name string) (int64, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return 0, false
	}
	return l.resolve(ctx, "lookup:browsers", l.source.BrowserIDs, normalized)
}

func (l *lookupTables) AdNetworkID(ctx context.Context, name string) (int64, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return 0, false
	}
	return l.resolve(ctx, "lookup:ad_networks", l.source.AdNetworkIDs, normalized)
}

// resolve looks up one key in a cached reference map, loading the map from
// the source on a cache miss. Load failures degrade to not-found.
func (l *lookupTables) resolve(
	ctx context.Context,
	cacheKey string,
	load func(context.Context) (map[string]int64, error),
	key string,
) (int64, bool) {
	table, err := l.cache.GetTable(ctx, cacheKey)
	if err != nil {
		table, err = load(ctx)
		if err != nil {
			return 0, false
		}

		// Caching failures are not fatal, the table was loaded anyway
		_ = l.cache.SetTable(ctx, cacheKey, table, l.ttl)
	}

	id, ok := table[key]
	return id, ok
}
