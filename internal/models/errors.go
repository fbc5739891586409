package models

import (
	"errors"
	"fmt"
)

var (
	// ErrEndpointNotFound indicates the provider endpoint returned 404 (a
	// configuration error, never retried)
	ErrEndpointNotFound = errors.New("endpoint not found")

	// ErrRetriesExhausted indicates a page request failed after the full retry budget
	ErrRetriesExhausted = errors.New("request failed after retries")

	// ErrInvalidRecord indicates a provider payload element failed validation
	ErrInvalidRecord = errors.New("invalid creative record")

	// ErrUnsupportedFormat indicates a creative uses a format outside the
	// provider's supported-format allowlist
	ErrUnsupportedFormat = errors.New("unsupported ad format")

	// ErrStoreUnavailable indicates the creatives store could not be reached
	ErrStoreUnavailable = errors.New("creative store unavailable")

	// ErrCacheUnavailable indicates a cache miss or an unreachable cache backend
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrRateLimitExceeded indicates an ops API caller exceeded the rate limit
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Run phases used by ParserError
const (
	PhaseFetch       = "fetch"
	PhaseSynchronize = "synchronize"
	PhaseIntegrity   = "integrity"
	PhaseDispatch    = "dispatch"
	PhaseDryRun      = "dry_run"
)

// ParserError wraps a failure of one pipeline phase with enough context to
// tell which phase broke without unpacking the cause chain.
type ParserError struct {
	Phase   string
	Source  string
	Message string
	Err     error
}

func (e *ParserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s/%s]: %v", e.Message, e.Source, e.Phase, e.Err)
	}
	return fmt.Sprintf("%s [%s/%s]", e.Message, e.Source, e.Phase)
}

func (e *ParserError) Unwrap() error {
	return e.Err
}

// NewParserError creates a phase-scoped pipeline error
func NewParserError(phase, source, message string, err error) *ParserError {
	return &ParserError{
		Phase:   phase,
		Source:  source,
		Message: message,
		Err:     err,
	}
}
