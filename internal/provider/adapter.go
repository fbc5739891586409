package provider

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"creativesync/internal/models"
)

// Adapter converts one provider's raw API payload into the unified
// CreativeRecord. Each adapter owns its provider's field names, legacy key
// fallbacks and format heuristics.
type Adapter interface {
	// Source returns the stable provider identifier (e.g. "push_house")
	Source() string

	// Decode builds a CreativeRecord from one raw list element. Payloads
	// that are not JSON objects fail with models.ErrInvalidRecord; missing
	// fields never fail, they default.
	Decode(raw json.RawMessage) (*models.CreativeRecord, error)

	// SupportedFormats is the allowlist a record's format must fall in to
	// pass validation
	SupportedFormats() []models.AdFormat
}

// flexInt64 decodes a JSON number, numeric string, or null into an int64.
// Providers have historically flipped between `123` and `"123"` for ids.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Tolerate float-shaped ids like 123.0
		fv, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return fmt.Errorf("invalid numeric value %q: %w", s, err)
		}
		v = int64(fv)
	}
	*f = flexInt64(v)
	return nil
}

// flexFloat64 decodes a JSON number, numeric string, or null into a float64
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	*f = flexFloat64(v)
	return nil
}

// timeLayouts are the payload date shapes seen across providers
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseCreatedAt parses a provider timestamp defensively. Empty values,
// unparseable values, epoch-adjacent dates (year <= 1970) and dates more
// than a year in the future all substitute the ingestion time, so garbage
// upstream dates never poison stored rows.
func parseCreatedAt(raw string, now time.Time) time.Time {
	parsed, ok := parseTime(raw)
	if !ok {
		return now
	}
	if parsed.Year() <= 1970 {
		return now
	}
	if parsed.After(now.AddDate(1, 0, 0)) {
		return now
	}
	return parsed
}

// parseOptionalTime parses a timestamp that may legitimately be absent
func parseOptionalTime(raw string) *time.Time {
	parsed, ok := parseTime(raw)
	if !ok {
		return nil
	}
	return &parsed
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// hasImageFileName reports whether an image URL ends in an actual file name
// with an extension, as opposed to a bare directory path. Providers sometimes
// send truncated CDN paths like "https://cdn.example.com/imgs/".
func hasImageFileName(imageURL string) bool {
	if imageURL == "" {
		return false
	}
	if strings.HasSuffix(imageURL, "/") {
		return false
	}
	name := path.Base(imageURL)
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	return name != "" && name != "." && strings.Contains(name, ".")
}
