package cache

import (
	"context"
	"time"
)

// Service caches the reference lookup tables (countries, sources, browsers,
// ad networks) as whole name-to-id maps. The tables are small and change
// rarely, so an entire table lives under one key rather than one entry per name.
// External packages should use this interface, not the concrete implementations
type Service interface {
	GetTable(ctx context.Context, key string) (map[string]int64, error)
	SetTable(ctx context.Context, key string, table map[string]int64, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
