package normalizer

import (
	"strings"

	"creativesync/internal/models"
)

// Platform classifies a creative as mobile or desktop from the provider's
// OS and device-type hints. Undetermined hints fall back to MOBILE: that is
// the dominant traffic class for push networks, and the providers omit both
// hints for a large share of mobile inventory.
func Platform(osHint, deviceHint string) models.Platform {
	os := strings.ToLower(osHint)
	device := strings.ToLower(deviceHint)

	if strings.Contains(os, "android") || strings.Contains(os, "ios") {
		return models.PlatformMobile
	}

	if strings.Contains(device, "phone") || strings.Contains(device, "mobile") {
		return models.PlatformMobile
	}

	// Tablets count as mobile
	if strings.Contains(device, "tablet") {
		return models.PlatformMobile
	}

	if strings.Contains(os, "windows") || strings.Contains(os, "macos") || strings.Contains(os, "linux") {
		return models.PlatformDesktop
	}

	return models.PlatformMobile
}

// formatAliases maps provider format spellings onto the two stored formats
var formatAliases = map[string]models.AdFormat{
	"push":   models.FormatPush,
	"inpage": models.FormatInpage,
	"native": models.FormatInpage,
	"banner": models.FormatInpage,
}

// Format normalizes a raw provider format value. Unmapped values fall back
// to PUSH.
func Format(raw string) models.AdFormat {
	if format, ok := formatAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return format
	}
	return models.FormatPush
}

// adultKeywords is the fixed keyword list for the adult-content heuristic
var adultKeywords = []string{
	"sex",
	"dating",
	"adult",
	"porn",
	"xxx",
	"sexy",
	"hot girls",
	"escorts",
	"hookup",
	"nude",
	"erotic",
	"massage",
	"intimate",
}

// IsAdultContent reports whether the creative's title or text matches the
// adult keyword list. Case-insensitive substring match; any hit is enough.
func IsAdultContent(title, text string) bool {
	haystack := strings.ToLower(title + " " + text)

	for _, keyword := range adultKeywords {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}

	return false
}
