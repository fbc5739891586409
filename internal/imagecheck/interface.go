package imagecheck

import "context"

// Service checks whether creative image URLs actually resolve to an image.
// External packages should use this interface, not the concrete implementations
type Service interface {
	// Check probes each URL and reports per-URL reachability. The error is
	// non-nil only when the probe itself could not run (e.g. every request
	// failed to even start); individual unreachable URLs map to false.
	Check(ctx context.Context, urls []string) (map[string]bool, error)
}
