package jobs

import "context"

// Dispatcher queues background enrichment work for newly inserted creatives.
// External packages should use this interface, not the concrete implementations
type Dispatcher interface {
	DispatchEnrichment(ctx context.Context, source string, creativeIDs []int64) error
}
